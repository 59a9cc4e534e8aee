package telegram

import (
	"errors"
	"strconv"
	"strings"

	"dsa-validator/api/internal/task"
)

const separator = "---"

var (
	errTestsUsage    = errors.New("Usage: /tests [n] <statement>")
	errSolutionUsage = errors.New("Usage: /solution [language]\n<statement>\n---\n<code>")
)

// parseTests reads "/tests [n] <statement>".
func parseTests(args string) (task.TestCaseRequest, error) {
	args = strings.TrimSpace(args)
	req := task.TestCaseRequest{Count: task.DefaultTestCaseCount}

	first, rest, _ := strings.Cut(args, " ")
	if nl := strings.IndexByte(first, '\n'); nl >= 0 {
		first, rest = first[:nl], first[nl+1:]+" "+rest
	}
	if n, err := strconv.Atoi(first); err == nil {
		if n < 1 {
			return task.TestCaseRequest{}, errors.New("n must be at least 1")
		}
		req.Count = n
		args = strings.TrimSpace(rest)
	}
	if args == "" {
		return task.TestCaseRequest{}, errTestsUsage
	}
	req.Problem = args
	return req, nil
}

// parseSolution reads the whole message: "/solution [language]" on the
// first line, then the statement, a line holding only "---" and the code.
func parseSolution(text string) (task.SolutionSubmission, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	lang := task.DefaultLanguage
	// a single word after the command is the language; more words start
	// the statement
	switch fields := strings.Fields(lines[0]); len(fields) {
	case 0, 1:
		lines[0] = ""
	case 2:
		lang = fields[1]
		lines[0] = ""
	default:
		lines[0] = strings.Join(fields[1:], " ")
	}

	sep := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == separator {
			sep = i
			break
		}
	}
	if sep < 0 {
		return task.SolutionSubmission{}, errSolutionUsage
	}

	problem := strings.TrimSpace(strings.Join(lines[:sep], "\n"))
	code := strings.Trim(strings.Join(lines[sep+1:], "\n"), "\n")
	if problem == "" || strings.TrimSpace(code) == "" {
		return task.SolutionSubmission{}, errSolutionUsage
	}
	return task.SolutionSubmission{Problem: problem, Code: code, Language: lang}, nil
}
