// Package prompt renders the instructions sent to the model for each task.
// Builders are pure: no I/O, no validation, any input string is accepted.
package prompt

import (
	"fmt"
	"strings"
)

func ProblemValidation(problem string) string {
	var b strings.Builder
	b.WriteString("Analyze the following Data Structures and Algorithms problem and determine if it's valid.\n")
	b.WriteString("A valid problem must:\n")
	b.WriteString("1. Have clear, unambiguous requirements\n")
	b.WriteString("2. Be free of logical contradictions or circular dependencies\n")
	b.WriteString("3. Have at least one valid solution\n")
	b.WriteString("4. Provide sufficient information to solve\n\n")
	b.WriteString("Problem Statement:\n")
	b.WriteString(problem)
	b.WriteString("\n\n")
	b.WriteString("Please analyze the problem carefully and return a JSON with the following structure:\n")
	b.WriteString(`{
    "is_valid": true/false,
    "reason": "detailed explanation of validity or issues",
    "suggested_fixes": ["fix1", "fix2"] (only if invalid)
}`)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly("object"))
	return b.String()
}

func SolutionValidation(problem, code, language string) string {
	tag := fenceTag(language)
	fence := fenceFor(code)

	var b strings.Builder
	b.WriteString("Evaluate if the following solution correctly solves the given DSA problem.\n\n")
	b.WriteString("Problem Statement:\n")
	b.WriteString(problem)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Proposed Solution (%s):\n", language)
	b.WriteString(fence + tag + "\n")
	b.WriteString(code)
	b.WriteString("\n" + fence + "\n\n")
	b.WriteString("Please analyze the solution for:\n")
	b.WriteString("1. Correctness: Does it solve the problem as specified?\n")
	b.WriteString("2. Efficiency: What's the time and space complexity?\n")
	b.WriteString("3. Edge Cases: Does it handle all possible inputs?\n")
	b.WriteString("4. Code Quality: Is the implementation clean and maintainable?\n\n")
	b.WriteString("Return a JSON with the following structure:\n")
	b.WriteString(`{
    "is_correct": true/false,
    "correctness_explanation": "detailed analysis of correctness",
    "time_complexity": "e.g., O(n log n)",
    "space_complexity": "e.g., O(n)",
    "edge_cases_handled": true/false,
    "edge_cases_explanation": "analysis of edge case handling",
    "code_quality_score": 1-10,
    "improvement_suggestions": ["suggestion1", "suggestion2"]
}`)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly("object"))
	return b.String()
}

func TestCaseGeneration(problem string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d diverse test cases for the following DSA problem:\n\n", count)
	b.WriteString(problem)
	b.WriteString("\n\n")
	b.WriteString("Include a mix of normal cases, edge cases, and corner cases. For each test case, provide:\n")
	b.WriteString("1. Input values\n")
	b.WriteString("2. Expected output\n")
	b.WriteString("3. Brief explanation of what the test case is checking\n\n")
	fmt.Fprintf(&b, "Return exactly %d test cases as a JSON array with the following structure:\n", count)
	b.WriteString(`[
    {
        "input": "description of input (in a format appropriate for the problem)",
        "expected_output": "expected output value",
        "explanation": "what this test case is checking"
    },
    ...more test cases...
]`)
	b.WriteString("\n\n")
	b.WriteString("All three fields are strings; encode structured values (lists, matrices) as text.\n")
	b.WriteString(jsonOnly("array"))
	return b.String()
}

func jsonOnly(kind string) string {
	return "Respond with the JSON " + kind + " only and nothing else: no markdown code fences, no commentary before or after it."
}

// fenceTag reduces a language name to something safe after an opening
// fence; anything that is not a plain tag is dropped.
func fenceTag(language string) string {
	tag := strings.ToLower(strings.TrimSpace(language))
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || strings.ContainsRune("+#-_.", r)) {
			return ""
		}
	}
	return tag
}

// fenceFor returns a backtick fence longer than any backtick run in code so
// the code cannot close the block early.
func fenceFor(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
