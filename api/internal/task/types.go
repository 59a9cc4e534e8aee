// Package task holds the request and verdict types of the three validator
// tasks and the dispatcher that runs them against a model gateway.
package task

import "context"

const (
	ValidateProblem   = "validate_problem"
	ValidateSolution  = "validate_solution"
	GenerateTestCases = "generate_test_cases"
)

const (
	DefaultLanguage      = "python"
	DefaultTestCaseCount = 5
)

// SolutionSubmission is a candidate solution to check against a problem.
type SolutionSubmission struct {
	Problem  string
	Code     string
	Language string
}

// TestCaseRequest asks for Count test cases. Count is a hint to the model;
// the result is returned as-is whatever its length.
type TestCaseRequest struct {
	Problem string
	Count   int
}

// ValidationVerdict is the model's judgement of a problem statement.
// SuggestedFixes is only kept when IsValid is false.
type ValidationVerdict struct {
	IsValid        bool     `json:"is_valid"`
	Reason         string   `json:"reason"`
	SuggestedFixes []string `json:"suggested_fixes,omitempty"`
}

// SolutionVerdict is the model's judgement of a solution. Optional fields
// the model left out are rendered as null.
type SolutionVerdict struct {
	IsCorrect              bool     `json:"is_correct"`
	CorrectnessExplanation string   `json:"correctness_explanation"`
	TimeComplexity         *string  `json:"time_complexity"`
	SpaceComplexity        *string  `json:"space_complexity"`
	EdgeCasesHandled       *bool    `json:"edge_cases_handled"`
	EdgeCasesExplanation   *string  `json:"edge_cases_explanation"`
	CodeQualityScore       *int     `json:"code_quality_score"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Explanation    string `json:"explanation"`
}

// Service is what the HTTP handlers and the Telegram bot talk to.
type Service interface {
	ValidateProblem(ctx context.Context, problem string) (ValidationVerdict, error)
	ValidateSolution(ctx context.Context, in SolutionSubmission) (SolutionVerdict, error)
	GenerateTestCases(ctx context.Context, in TestCaseRequest) ([]TestCase, error)
}
