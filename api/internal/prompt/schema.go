package prompt

// JSON Schemas of the three model contracts. The extractor checks decoded
// model output against them; the prompts describe the same shapes in prose.

const ProblemValidationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "problem_validation",
  "type": "object",
  "required": ["is_valid", "reason"],
  "properties": {
    "is_valid": {"type": "boolean"},
    "reason": {"type": "string"},
    "suggested_fixes": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    }
  }
}`

const SolutionValidationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "solution_validation",
  "type": "object",
  "required": ["is_correct", "correctness_explanation"],
  "properties": {
    "is_correct": {"type": "boolean"},
    "correctness_explanation": {"type": "string"},
    "time_complexity": {"type": ["string", "null"]},
    "space_complexity": {"type": ["string", "null"]},
    "edge_cases_handled": {"type": ["boolean", "null"]},
    "edge_cases_explanation": {"type": ["string", "null"]},
    "code_quality_score": {"type": ["integer", "null"], "minimum": 1, "maximum": 10},
    "improvement_suggestions": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    }
  }
}`

const TestCasesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "test_cases",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["input", "expected_output", "explanation"],
    "properties": {
      "input": {"type": "string"},
      "expected_output": {"type": "string"},
      "explanation": {"type": "string"}
    }
  }
}`
