package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webpilot-ai/webpilot/config"
	"github.com/webpilot-ai/webpilot/internal/agent/core"
	agenttele "github.com/webpilot-ai/webpilot/internal/agent/telemetry"
	agenttools "github.com/webpilot-ai/webpilot/internal/agent/tools"
	"github.com/webpilot-ai/webpilot/internal/store"
	"github.com/webpilot-ai/webpilot/provider"
)

func askCMD() *cobra.Command {
	var cfgPath string
	var model string
	var showTrace bool
	ask := &cobra.Command{
		Use:   "ask [message]",
		Short: "Run a single request through the agent and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			llm, err := provider.NewProvider(provider.OpenAI, cfg.LLM)
			if err != nil {
				return err
			}

			tele := agenttele.NewTelemetry(cfg.Telemetry)
			registry := core.NewRegistry()
			agenttools.New(cfg.Tools, nil).Register(registry)
			tasks := store.New(nil, nil, nil)
			orchLogger := log.New(cmd.ErrOrStderr(), "[ORCH] ", log.LstdFlags)
			orch := core.NewOrchestrator(cfg, orchLogger, tele, registry, llm, core.NewTracker(), tasks)

			resp, err := orch.Process(context.Background(), core.Request{
				Message: strings.Join(args, " "),
				Model:   model,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			if showTrace {
				b, _ := json.MarshalIndent(resp.Trace, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			}
			return nil
		},
	}
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	ask.Flags().StringVar(&model, "model", "", "override the configured model")
	ask.Flags().BoolVar(&showTrace, "trace", false, "print the structured trace after the answer")
	return ask
}
