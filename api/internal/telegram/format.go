package telegram

import (
	"errors"
	"fmt"
	"strings"

	"dsa-validator/api/internal/extract"
	"dsa-validator/api/internal/llm"
	"dsa-validator/api/internal/task"
)

func formatValidation(v task.ValidationVerdict) string {
	var b strings.Builder
	if v.IsValid {
		b.WriteString("✅ The problem is valid.\n")
	} else {
		b.WriteString("❌ The problem is not valid.\n")
	}
	b.WriteString("\n" + v.Reason + "\n")
	if len(v.SuggestedFixes) > 0 {
		b.WriteString("\nSuggested fixes:\n")
		for _, f := range v.SuggestedFixes {
			b.WriteString("• " + f + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSolution(v task.SolutionVerdict) string {
	var b strings.Builder
	if v.IsCorrect {
		b.WriteString("✅ The solution is correct.\n")
	} else {
		b.WriteString("❌ The solution is not correct.\n")
	}
	b.WriteString("\n" + v.CorrectnessExplanation + "\n")

	if v.TimeComplexity != nil || v.SpaceComplexity != nil {
		b.WriteString("\n")
		if v.TimeComplexity != nil {
			b.WriteString("Time: " + *v.TimeComplexity + "\n")
		}
		if v.SpaceComplexity != nil {
			b.WriteString("Space: " + *v.SpaceComplexity + "\n")
		}
	}
	if v.EdgeCasesHandled != nil {
		mark := "no"
		if *v.EdgeCasesHandled {
			mark = "yes"
		}
		b.WriteString("\nEdge cases handled: " + mark + "\n")
		if v.EdgeCasesExplanation != nil {
			b.WriteString(*v.EdgeCasesExplanation + "\n")
		}
	}
	if v.CodeQualityScore != nil {
		fmt.Fprintf(&b, "\nCode quality: %d/10\n", *v.CodeQualityScore)
	}
	if len(v.ImprovementSuggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range v.ImprovementSuggestions {
			b.WriteString("• " + s + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTestCases(cases []task.TestCase) string {
	if len(cases) == 0 {
		return "The model returned no test cases."
	}
	var b strings.Builder
	for i, c := range cases {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d\nInput: %s\nExpected: %s\nWhy: %s\n", i+1, c.Input, c.ExpectedOutput, c.Explanation)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHealth(gw llm.Gateway) string {
	if gw == nil {
		return "⚠️ no provider"
	}
	state := "configured"
	if !gw.Configured() {
		state = "API key missing"
	}
	return fmt.Sprintf("✅ OK\nprovider: %s (%s), %s", gw.Name(), gw.Model(), state)
}

func formatError(err error) string {
	kind := task.Kind(err)
	switch kind {
	case task.KindConfiguration, task.KindGateway:
		return "⚠️ " + kind + ": " + err.Error()
	case task.KindExtraction:
		if errors.Is(err, extract.ErrEmpty) {
			return "⚠️ " + kind + ": the model returned an empty response"
		}
		return "⚠️ " + kind + ": the model response could not be parsed, try again"
	default:
		return "⚠️ " + kind + ": something went wrong"
	}
}
