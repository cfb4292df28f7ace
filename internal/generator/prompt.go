package generator

import (
	"fmt"

	"brightpath/internal/llm"
)

const systemPrompt = "You generate grade-school math questions aligned to the provided topic. Return only valid JSON matching the schema."

// userPrompt renders the single user message sent to the model.
func userPrompt(req Request) string {
	return fmt.Sprintf(`Create one question for Grade %d.
Topic code: %s
Topic title: %s
Strand: %s
Sub-strand: %s
Difficulty: %s
Hint count: %d
Requirements:
- Include the topic code in questionText as [%s] prefix.
- Age-appropriate for Grade %d.
- If answerFormat is multiple_choice, provide 3-4 options.
- correctAnswer.value must match one valid answer.
- hintLadder must have exactly %d progressive hints.`,
		req.GradeLevel, req.TopicCode, req.TopicTitle, req.Strand, req.SubStrand,
		req.Difficulty, req.MaxHints, req.TopicCode, req.GradeLevel, req.MaxHints)
}

// draftSchema builds the JSON Schema the model response must conform to.
// The hint ladder bounds depend on the requested hint count, so the
// schema name carries it to keep compiled-schema caching correct.
func draftSchema(maxHints int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("practice-question-h%d", maxHints),
		Description: "A single math practice question with hints and an explanation",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"questionText": map[string]any{"type": "string"},
				"answerFormat": map[string]any{
					"type": "string",
					"enum": []any{"multiple_choice", "numeric"},
				},
				"options": map[string]any{
					"type":  []any{"array", "null"},
					"items": map[string]any{"type": "string"},
				},
				"correctAnswer": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"value": map[string]any{"type": "string"},
					},
					"required": []any{"value"},
				},
				"hintLadder": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": maxHints,
					"maxItems": maxHints,
				},
				"explanation": map[string]any{"type": "string"},
			},
			"required": []any{"questionText", "answerFormat", "options", "correctAnswer", "hintLadder", "explanation"},
		},
	}
}
