package core

import "fmt"

func buildThinkPrompt(message, catalog string) string {
	return fmt.Sprintf(`You are a web assistant agent. Analyze the user's request and think through what information or actions would satisfy it.

Available tools:
%s
User request: "%s"

Describe, in a short paragraph, what the user needs and which tools (if any) would help. Do not produce a plan yet.`, catalog, message)
}

func buildPlanPrompt(message, thinking, catalog string) string {
	return fmt.Sprintf(`You are a web assistant agent. Create an execution plan for the user's request.

User request: "%s"

Your analysis so far:
%s

Available tools:
%s
Respond ONLY with valid JSON in the following format:
{
  "steps": [
    {
      "step": 1,
      "description": "what this step does",
      "tool": "tool name or \"none\"",
      "parameters": {"param": "value"},
      "expected_outcome": "what this step should produce"
    }
  ],
  "fallback_plan": "what to do if the steps fail",
  "success_criteria": "how to judge the result"
}
Do not include any other text or explanation.`, message, thinking, catalog)
}

func buildRespondPrompt(message, thinking, planJSON, executionJSON string) string {
	return fmt.Sprintf(`You are a web assistant agent. Compose the final answer for the user.

User request: "%s"

Your analysis:
%s

The executed plan:
%s

The execution results:
%s

Write a clear, helpful answer for the user based on the results above. Mention tool failures only when they affect the answer. Respond with plain text only.`, message, thinking, planJSON, executionJSON)
}

func buildRecoveryPrompt(message, errText string) string {
	return fmt.Sprintf(`You are a web assistant agent. Processing the user's request failed partway through.

User request: "%s"

Error: %s

Answer the user's request as well as you can from your own knowledge, without using any tools. Respond with plain text only.`, message, errText)
}
