package models

// UnknownCorrectIndex marks a question whose correct option could not be
// determined. Such questions are shown but never graded.
const UnknownCorrectIndex = -1

type HealthImpact struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// DefaultHealthImpact applies when a question carries no per-question deltas.
var DefaultHealthImpact = HealthImpact{Correct: 8, Wrong: -12}

// DifficultyImpacts is the per-difficulty health impact table attached to
// generated questions.
var DifficultyImpacts = map[string]HealthImpact{
	"easy":   {Correct: 5, Wrong: -2},
	"medium": {Correct: 10, Wrong: -5},
	"hard":   {Correct: 20, Wrong: -10},
}

// ImpactForDifficulty falls back to the default impact for unknown levels.
func ImpactForDifficulty(difficulty string) HealthImpact {
	if impact, ok := DifficultyImpacts[difficulty]; ok {
		return impact
	}
	return DefaultHealthImpact
}

type Question struct {
	ID           string       `json:"id"`
	Prompt       string       `json:"prompt"`
	Difficulty   string       `json:"difficulty,omitempty"`
	Options      []string     `json:"options"`
	CorrectIndex int          `json:"correctIndex"`
	Explanation  string       `json:"explanation,omitempty"`
	HealthImpact HealthImpact `json:"healthImpact"`
}

// Gradable reports whether the correct index is present and in bounds.
func (q Question) Gradable() bool {
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

type GenerateQuestionsRequest struct {
	PDFText   string `json:"pdf_text"`
	NumEasy   *int   `json:"num_easy,omitempty"`
	NumMedium *int   `json:"num_medium,omitempty"`
	NumHard   *int   `json:"num_hard,omitempty"`
}

type QuestionResponse struct {
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"total_questions"`
}

type UploadResponse struct {
	Filename    string `json:"filename"`
	TextLength  int    `json:"text_length"`
	TextPreview string `json:"text_preview"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
