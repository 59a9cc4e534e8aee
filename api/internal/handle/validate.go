package handle

import (
	"context"
	"net/http"

	"dsa-validator/api/internal/task"
)

type ProblemRequest struct {
	ProblemStatement *string `json:"problem_statement" validate:"required"`
}

type SolutionRequest struct {
	ProblemStatement *string `json:"problem_statement" validate:"required"`
	SolutionCode     *string `json:"solution_code" validate:"required"`
	Language         string  `json:"language"`
}

type TestCasesRequest struct {
	ProblemStatement *string `json:"problem_statement" validate:"required"`
	NumTestCases     *int    `json:"num_test_cases" validate:"omitempty,min=1"`
}

func (h *Handle) ValidateProblem(w http.ResponseWriter, r *http.Request) {
	var req ProblemRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline(r))
	defer cancel()

	out, err := h.svc.ValidateProblem(ctx, *req.ProblemStatement)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handle) ValidateSolution(w http.ResponseWriter, r *http.Request) {
	var req SolutionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Language == "" {
		req.Language = task.DefaultLanguage
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline(r))
	defer cancel()

	out, err := h.svc.ValidateSolution(ctx, task.SolutionSubmission{
		Problem:  *req.ProblemStatement,
		Code:     *req.SolutionCode,
		Language: req.Language,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handle) GenerateTestCases(w http.ResponseWriter, r *http.Request) {
	var req TestCasesRequest
	if !h.decode(w, r, &req) {
		return
	}
	count := task.DefaultTestCaseCount
	if req.NumTestCases != nil {
		count = *req.NumTestCases
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline(r))
	defer cancel()

	out, err := h.svc.GenerateTestCases(ctx, task.TestCaseRequest{
		Problem: *req.ProblemStatement,
		Count:   count,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
