// Package normalize coerces loosely shaped question records into the
// canonical models.Question. Upstream generators disagree on field names
// (options vs choices vs answers, correctIndex vs answer letter), so every
// field is probed against a priority-ordered key list and defaulted when
// absent. Nothing here returns an error: a completely empty record becomes a
// fully defaulted placeholder question.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"studybuddy-backend/internal/models"
)

var (
	promptKeys      = []string{"prompt", "question", "text", "title"}
	optionKeys      = []string{"options", "choices", "answers"}
	indexKeys       = []string{"correctIndex", "correct_index", "answerIndex", "answer_index", "correct_answer", "answer"}
	explanationKeys = []string{"explanation", "rationale", "reason"}
	idKeys          = []string{"id", "question_id"}
	impactKeys      = []string{"healthImpact", "health_impact"}
)

// answer letters used by generators that report "correct_answer": "B"
var letterIndex = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}

// Question maps a raw record to the canonical shape. The returned question
// always has a non-empty prompt, a non-nil options slice, and a CorrectIndex
// that is either in [0, len(options)) or exactly UnknownCorrectIndex.
func Question(raw map[string]any) models.Question {
	q := models.Question{
		ID:           firstString(raw, idKeys),
		Prompt:       firstString(raw, promptKeys),
		Options:      options(raw),
		Explanation:  firstString(raw, explanationKeys),
		Difficulty:   strings.ToLower(firstString(raw, []string{"difficulty"})),
		HealthImpact: healthImpact(raw),
	}

	if q.ID == "" {
		q.ID = "q-" + uuid.NewString()
	}
	if q.Prompt == "" {
		q.Prompt = "…"
	}

	q.CorrectIndex = correctIndex(raw, len(q.Options))

	return q
}

// Questions normalizes a whole set, skipping nil records.
func Questions(raw []map[string]any) []models.Question {
	out := make([]models.Question, 0, len(raw))
	for _, r := range raw {
		out = append(out, Question(r))
	}
	return out
}

func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s := asString(v); s != "" {
			return s
		}
	}
	return ""
}

func options(raw map[string]any) []string {
	for _, key := range optionKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			continue
		}
		opts := make([]string, 0, len(list))
		for _, item := range list {
			opts = append(opts, asString(item))
		}
		return opts
	}
	return []string{}
}

func correctIndex(raw map[string]any, optionCount int) int {
	for _, key := range indexKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		idx, resolved := asIndex(v)
		if !resolved {
			continue
		}
		if idx >= 0 && idx < optionCount {
			return idx
		}
		// Present but out of bounds: the question is not gradable.
		return models.UnknownCorrectIndex
	}
	return models.UnknownCorrectIndex
}

func healthImpact(raw map[string]any) models.HealthImpact {
	for _, key := range impactKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		impact := models.DefaultHealthImpact
		if c, ok := asNumber(m["correct"]); ok {
			impact.Correct = int(c)
		}
		if w, ok := asNumber(m["wrong"]); ok {
			impact.Wrong = int(w)
		}
		return impact
	}
	return models.DefaultHealthImpact
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", s))
	}
}

// asIndex accepts 0-based numbers, numeric strings, and answer letters A-D.
func asIndex(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		s := strings.ToUpper(strings.TrimSpace(n))
		if s == "" {
			return 0, false
		}
		if idx, ok := letterIndex[s]; ok {
			return idx, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
