package generator

import "brightpath/internal/models"

// Request carries everything needed to generate one question.
type Request struct {
	GradeLevel int
	TopicCode  string
	TopicTitle string
	Strand     string
	SubStrand  string
	Difficulty models.Difficulty
	MaxHints   int
	Seed       int
}

// Answer wraps the correct-answer value as sent over the wire.
type Answer struct {
	Value string `json:"value"`
}

// Draft is a candidate question as produced by a model or the
// deterministic generator, before persistence.
type Draft struct {
	QuestionText  string   `json:"questionText"`
	AnswerFormat  string   `json:"answerFormat"`
	Options       []string `json:"options"`
	CorrectAnswer Answer   `json:"correctAnswer"`
	HintLadder    []string `json:"hintLadder"`
	Explanation   string   `json:"explanation"`
}

// Provenance records how a draft was produced.
type Provenance struct {
	Provider string // provider name or "deterministic"
	Model    string
	Attempts int
	Seed     int
}

// Result is a finalized draft plus its provenance.
type Result struct {
	Draft      Draft
	Provenance Provenance
}
