package models

import "github.com/google/uuid"

// SessionState is the snapshot shape rendered by the frontend and pushed over
// the websocket on every transition.
type SessionState struct {
	SessionID     uuid.UUID `json:"session_id"`
	CurrentIndex  int       `json:"currentIndex"`
	QuestionCount int       `json:"questionCount"`
	Health        int       `json:"health"`
	SelectedIndex int       `json:"selectedIndex"` // -1 = none
	AnswerLocked  bool      `json:"answerLocked"`
	CanFeed       bool      `json:"canFeed"`
	IsEating      bool      `json:"isEating"`
	IsGrowing     bool      `json:"isGrowing"`
	Completed     bool      `json:"completed"`
	Question      *Question `json:"question,omitempty"`
}

type CreateSessionRequest struct {
	Questions []map[string]any `json:"questions"`
}

type ChooseRequest struct {
	Index int `json:"index"`
}

type ChooseResponse struct {
	// Correct is null when the question is not gradable.
	Correct *bool        `json:"correct"`
	State   SessionState `json:"state"`
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
