package generator

import (
	"fmt"
	"strconv"

	"brightpath/internal/models"
)

// Deterministic produces a question draft as a pure function of the
// request seed. It guarantees availability when no live provider is
// configured and serves as the fallback in tests and development.
func Deterministic(req Request) Draft {
	left := 6 + (req.Seed % 5)
	right := 3 + (req.Seed % 4)
	answer := left + right

	options := []string{
		strconv.Itoa(answer),
		strconv.Itoa(answer - 1),
		strconv.Itoa(answer + 2),
	}

	hints := []string{
		"Start by adding the ones place first.",
		"Count forward from the larger number.",
		fmt.Sprintf("The answer should be just above %d.", answer-2),
	}
	if req.MaxHints < len(hints) {
		hints = hints[:req.MaxHints]
	}

	return Draft{
		QuestionText:  fmt.Sprintf("[%s] What is %d + %d?", req.TopicCode, left, right),
		AnswerFormat:  string(models.FormatMultipleChoice),
		Options:       options,
		CorrectAnswer: Answer{Value: strconv.Itoa(answer)},
		HintLadder:    hints,
		Explanation:   fmt.Sprintf("%d + %d = %d.", left, right, answer),
	}
}
