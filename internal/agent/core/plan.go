package core

import (
	"encoding/json"
	"strings"
)

// DefaultPlan is the single-step degrade-gracefully plan substituted
// whenever the Planning response cannot be parsed.
func DefaultPlan() Plan {
	return Plan{
		Steps: []PlanStep{{
			Step:            1,
			Description:     "Answer the request directly from model knowledge",
			Tool:            "none",
			Parameters:      map[string]interface{}{},
			ExpectedOutcome: "a direct answer",
		}},
		FallbackPlan:    "answer from model knowledge",
		SuccessCriteria: "user question is addressed",
	}
}

// ParsePlan extracts the JSON object from a Planning-phase response
// and parses it as a Plan. Any extraction, decode, or validation
// failure yields the default plan; the second return reports whether
// the model's plan was used.
func ParsePlan(text string) (Plan, bool) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return DefaultPlan(), false
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		return DefaultPlan(), false
	}
	if err := validatePlan(&plan); err != nil {
		return DefaultPlan(), false
	}
	return plan, true
}

func validatePlan(plan *Plan) error {
	if len(plan.Steps) == 0 {
		return errEmptyPlan
	}
	for i := range plan.Steps {
		step := &plan.Steps[i]
		if step.Step == 0 {
			step.Step = i + 1
		}
		if step.Tool == "" {
			step.Tool = "none"
		}
		if step.Parameters == nil {
			step.Parameters = map[string]interface{}{}
		}
	}
	if plan.SuccessCriteria == "" {
		plan.SuccessCriteria = "user question is addressed"
	}
	return nil
}

type planError string

func (e planError) Error() string { return string(e) }

const errEmptyPlan = planError("plan has no steps")

// extractJSONObject returns the substring spanning the first '{' to
// the last '}' of s.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
