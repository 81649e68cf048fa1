package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"studybuddy-backend/internal/models"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return m
}

func TestQuestion_CanonicalInput(t *testing.T) {
	q := Question(decode(t, `{
		"id": "q1",
		"prompt": "2+2?",
		"options": ["3", "4", "5"],
		"correctIndex": 1,
		"explanation": "basic arithmetic",
		"healthImpact": {"correct": 5, "wrong": -2}
	}`))

	if q.ID != "q1" || q.Prompt != "2+2?" {
		t.Errorf("Unexpected id/prompt: %q %q", q.ID, q.Prompt)
	}
	if len(q.Options) != 3 || q.Options[1] != "4" {
		t.Errorf("Unexpected options: %v", q.Options)
	}
	if q.CorrectIndex != 1 {
		t.Errorf("Expected correctIndex 1, got %d", q.CorrectIndex)
	}
	if q.HealthImpact != (models.HealthImpact{Correct: 5, Wrong: -2}) {
		t.Errorf("Unexpected health impact: %+v", q.HealthImpact)
	}
	if !q.Gradable() {
		t.Error("Expected question to be gradable")
	}
}

func TestQuestion_AlternateKeys(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		prompt   string
		options  int
		correct  int
		gradable bool
	}{
		{
			"choices and answerIndex",
			`{"question": "pick one", "choices": ["a", "b"], "answerIndex": 0}`,
			"pick one", 2, 0, true,
		},
		{
			"answers and correct_index",
			`{"text": "which?", "answers": ["x", "y", "z"], "correct_index": 2}`,
			"which?", 3, 2, true,
		},
		{
			"letter correct_answer",
			`{"prompt": "letter", "options": ["w", "x", "y", "z"], "correct_answer": "B"}`,
			"letter", 4, 1, true,
		},
		{
			"numeric string index",
			`{"prompt": "strnum", "options": ["w", "x", "y"], "correctIndex": "2"}`,
			"strnum", 3, 2, true,
		},
		{
			"out of bounds index is ungradable",
			`{"prompt": "oob", "options": ["a", "b"], "correctIndex": 7}`,
			"oob", 2, models.UnknownCorrectIndex, false,
		},
		{
			"missing index is ungradable",
			`{"prompt": "none", "options": ["a", "b"]}`,
			"none", 2, models.UnknownCorrectIndex, false,
		},
		{
			"garbage index is ungradable",
			`{"prompt": "junk", "options": ["a", "b"], "correctIndex": "maybe"}`,
			"junk", 2, models.UnknownCorrectIndex, false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Question(decode(t, tc.raw))
			if q.Prompt != tc.prompt {
				t.Errorf("Expected prompt %q, got %q", tc.prompt, q.Prompt)
			}
			if len(q.Options) != tc.options {
				t.Errorf("Expected %d options, got %v", tc.options, q.Options)
			}
			if q.CorrectIndex != tc.correct {
				t.Errorf("Expected correctIndex %d, got %d", tc.correct, q.CorrectIndex)
			}
			if q.Gradable() != tc.gradable {
				t.Errorf("Expected gradable=%v", tc.gradable)
			}
		})
	}
}

func TestQuestion_EmptyInputYieldsPlaceholder(t *testing.T) {
	q := Question(map[string]any{})

	if q.Prompt != "…" {
		t.Errorf("Expected placeholder prompt, got %q", q.Prompt)
	}
	if q.Options == nil || len(q.Options) != 0 {
		t.Errorf("Expected empty non-nil options, got %v", q.Options)
	}
	if q.CorrectIndex != models.UnknownCorrectIndex {
		t.Errorf("Expected unknown correct index, got %d", q.CorrectIndex)
	}
	if !strings.HasPrefix(q.ID, "q-") {
		t.Errorf("Expected generated id, got %q", q.ID)
	}
	if q.HealthImpact != models.DefaultHealthImpact {
		t.Errorf("Expected default health impact, got %+v", q.HealthImpact)
	}
	if q.Gradable() {
		t.Error("Placeholder question must not be gradable")
	}
}

func TestQuestion_OptionCoercion(t *testing.T) {
	q := Question(decode(t, `{"prompt": "mix", "options": ["text", 42, true, 3.5]}`))

	want := []string{"text", "42", "true", "3.5"}
	for i, w := range want {
		if q.Options[i] != w {
			t.Errorf("Option %d: expected %q, got %q", i, w, q.Options[i])
		}
	}
}

func TestQuestion_IndexAgainstEmptyOptions(t *testing.T) {
	q := Question(decode(t, `{"prompt": "no opts", "correctIndex": 0}`))

	if q.CorrectIndex != models.UnknownCorrectIndex {
		t.Errorf("Index with empty options must collapse to unknown, got %d", q.CorrectIndex)
	}
}

func TestQuestion_PartialHealthImpact(t *testing.T) {
	q := Question(decode(t, `{"prompt": "p", "options": ["a"], "health_impact": {"correct": 20}}`))

	if q.HealthImpact.Correct != 20 {
		t.Errorf("Expected correct delta 20, got %d", q.HealthImpact.Correct)
	}
	if q.HealthImpact.Wrong != models.DefaultHealthImpact.Wrong {
		t.Errorf("Expected default wrong delta, got %d", q.HealthImpact.Wrong)
	}
}

func TestQuestions_NormalizesWholeSet(t *testing.T) {
	raw := []map[string]any{
		decode(t, `{"prompt": "one", "options": ["a", "b"], "correctIndex": 0}`),
		{},
	}

	qs := Questions(raw)
	if len(qs) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(qs))
	}
	if qs[0].Prompt != "one" || qs[1].Prompt != "…" {
		t.Errorf("Unexpected prompts: %q %q", qs[0].Prompt, qs[1].Prompt)
	}
}
