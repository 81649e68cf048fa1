package session

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"studybuddy-backend/internal/models"
)

func arithmeticQuestion() models.Question {
	return models.Question{
		ID:           "q1",
		Prompt:       "2+2?",
		Options:      []string{"3", "4", "5"},
		CorrectIndex: 1,
		HealthImpact: models.DefaultHealthImpact,
	}
}

func questionSet(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = arithmeticQuestion()
	}
	return qs
}

func TestChoose_CorrectAnswer(t *testing.T) {
	s := New(questionSet(1), nil)

	state, correct := s.Choose(1)

	if correct == nil || !*correct {
		t.Fatal("Expected correct=true")
	}
	if state.Health != 78 {
		t.Errorf("Expected health 78 (70 + default 8), got %d", state.Health)
	}
	if !state.CanFeed {
		t.Error("Expected canFeed after correct answer")
	}
	if !state.AnswerLocked || state.SelectedIndex != 1 {
		t.Errorf("Expected locked selection 1, got locked=%v selected=%d",
			state.AnswerLocked, state.SelectedIndex)
	}
}

func TestChoose_WrongAnswer(t *testing.T) {
	s := New(questionSet(1), nil)

	state, correct := s.Choose(0)

	if correct == nil || *correct {
		t.Fatal("Expected correct=false")
	}
	if state.Health != 58 {
		t.Errorf("Expected health 58 (70 - default 12), got %d", state.Health)
	}
	if state.CanFeed {
		t.Error("Wrong answer must not grant feed permission")
	}
}

func TestChoose_HealthClampsAtMax(t *testing.T) {
	s := New(questionSet(1), nil)
	s.health = 96

	state, _ := s.Choose(1)

	if state.Health != 100 {
		t.Errorf("Expected health clamped to 100, got %d", state.Health)
	}
}

func TestChoose_HealthClampsAtMin(t *testing.T) {
	qs := questionSet(1)
	qs[0].HealthImpact = models.HealthImpact{Correct: 5, Wrong: -500}
	s := New(qs, nil)

	state, _ := s.Choose(0)

	if state.Health != 0 {
		t.Errorf("Expected health clamped to 0, got %d", state.Health)
	}
}

func TestClamp_RepeatedApplicationStaysInRange(t *testing.T) {
	h := InitialHealth
	deltas := []int{+50, +50, -7, -300, +13, +1000, -1, 0}

	for _, d := range deltas {
		h = clamp(h + d)
		if h < MinHealth || h > MaxHealth {
			t.Fatalf("Health %d escaped [%d,%d] after delta %d", h, MinHealth, MaxHealth, d)
		}
	}
}

func TestChoose_SecondChoiceIsNoOp(t *testing.T) {
	s := New(questionSet(1), nil)

	s.Choose(1)
	state, correct := s.Choose(0)

	if correct != nil {
		t.Error("Second choose must not report correctness")
	}
	if state.SelectedIndex != 1 {
		t.Errorf("Second choose must not change selection, got %d", state.SelectedIndex)
	}
	if state.Health != 78 {
		t.Errorf("Second choose must not change health, got %d", state.Health)
	}
}

func TestChoose_UngradableQuestion(t *testing.T) {
	qs := questionSet(1)
	qs[0].CorrectIndex = models.UnknownCorrectIndex
	s := New(qs, nil)

	state, correct := s.Choose(0)

	if correct != nil {
		t.Error("Ungradable question must report unknown correctness")
	}
	if state.Health != InitialHealth {
		t.Errorf("Ungradable question must not move health, got %d", state.Health)
	}
	if state.CanFeed {
		t.Error("Ungradable question must not grant feed permission")
	}
	if !state.AnswerLocked {
		t.Error("Answer should still lock so the player can advance")
	}
}

func TestChoose_OutOfRangeIndexIsNoOp(t *testing.T) {
	s := New(questionSet(1), nil)

	state, correct := s.Choose(7)

	if correct != nil || state.AnswerLocked {
		t.Error("Out-of-range choice must be a no-op")
	}
}

func TestAdvance_WhenUnlockedIsNoOp(t *testing.T) {
	s := New(questionSet(2), nil)

	state := s.Advance()

	if state.CurrentIndex != 0 || state.Completed {
		t.Errorf("Advance without a locked answer must be a no-op, got index=%d completed=%v",
			state.CurrentIndex, state.Completed)
	}
}

func TestAdvance_MovesToNextQuestion(t *testing.T) {
	s := New(questionSet(3), nil)

	s.Choose(1)
	state := s.Advance()

	if state.CurrentIndex != 1 {
		t.Errorf("Expected index 1, got %d", state.CurrentIndex)
	}
	if state.AnswerLocked || state.CanFeed || state.SelectedIndex != -1 {
		t.Errorf("Advance must clear selection state: %+v", state)
	}
}

func TestAdvance_LastQuestionCompletesSet(t *testing.T) {
	s := New(questionSet(3), nil)

	for i := 0; i < 3; i++ {
		s.Choose(1)
		s.Advance()
	}

	state := s.State()
	if !state.Completed {
		t.Fatal("Expected set complete after advancing past the last question")
	}
	if state.Question != nil {
		t.Error("Completed state must not expose a current question")
	}

	state = s.ContinueFromComplete()
	if state.Completed || state.CurrentIndex != 0 {
		t.Errorf("Continue must replay from index 0, got %+v", state)
	}
}

func TestContinueFromComplete_BeforeCompleteIsNoOp(t *testing.T) {
	s := New(questionSet(2), nil)
	s.Choose(1)

	state := s.ContinueFromComplete()

	if state.CurrentIndex != 0 || !state.AnswerLocked {
		t.Error("Continue before completion must be a no-op")
	}
}

func TestFeed_ConsumesPermission(t *testing.T) {
	s := New(questionSet(1), nil)
	s.SetAnimationDurations(10*time.Millisecond, 10*time.Millisecond)

	s.Choose(1) // health 78, canFeed
	state := s.Feed()

	if state.Health != 84 {
		t.Errorf("Expected health 84 after +6 feed, got %d", state.Health)
	}
	if state.CanFeed {
		t.Error("Feed must consume the permission")
	}
	if !state.IsEating {
		t.Error("Feed must start the eating animation")
	}

	// Second feed is a no-op
	state = s.Feed()
	if state.Health != 84 {
		t.Errorf("Second feed must not change health, got %d", state.Health)
	}
}

func TestFeed_WithoutPermissionIsNoOp(t *testing.T) {
	s := New(questionSet(1), nil)

	state := s.Feed()

	if state.Health != InitialHealth || state.IsEating {
		t.Error("Feed without permission must be a no-op")
	}
}

func TestFeed_ClampsAtMax(t *testing.T) {
	s := New(questionSet(1), nil)
	s.health = 98
	s.canFeed = true

	state := s.Feed()

	if state.Health != 100 {
		t.Errorf("Expected feed clamped to 100, got %d", state.Health)
	}
}

func TestEatingFlagAutoClears(t *testing.T) {
	updates := make(chan models.SessionState, 16)
	s := New(questionSet(1), func(state models.SessionState) {
		updates <- state
	})
	s.SetAnimationDurations(15*time.Millisecond, 15*time.Millisecond)

	s.Choose(1)
	s.Feed()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-updates:
			if !state.IsEating && state.Health == 84 {
				return // flag cleared and published
			}
		case <-deadline:
			t.Fatal("Eating flag never cleared")
		}
	}
}

func TestClose_CancelsPendingTimers(t *testing.T) {
	published := make(chan models.SessionState, 16)
	s := New(questionSet(1), func(state models.SessionState) {
		published <- state
	})
	s.SetAnimationDurations(200*time.Millisecond, 200*time.Millisecond)

	s.Choose(1)
	s.Feed()
	s.Close()
	drain(published)

	// The timers must not fire a publication after teardown.
	select {
	case state := <-published:
		t.Fatalf("Publication after Close: %+v", state)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestEmptyQuestionList_OnlyTeardownAccepted(t *testing.T) {
	s := New(nil, nil)

	if state, correct := s.Choose(0); correct != nil || state.AnswerLocked {
		t.Error("Choose on empty list must be a no-op")
	}
	if state := s.Advance(); state.Completed {
		t.Error("Advance on empty list must be a no-op")
	}
	if state := s.Feed(); state.Health != InitialHealth {
		t.Error("Feed on empty list must be a no-op")
	}

	s.Close() // must not panic
}

func TestStore_CreateGetDelete(t *testing.T) {
	st := NewStore(nil)

	s := st.Create(questionSet(1))
	if got, ok := st.Get(s.ID()); !ok || got != s {
		t.Fatal("Expected to retrieve the created session")
	}
	if st.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", st.Len())
	}

	if !st.Delete(s.ID()) {
		t.Fatal("Expected delete to report success")
	}
	if _, ok := st.Get(s.ID()); ok {
		t.Error("Deleted session must be gone")
	}
	if st.Delete(s.ID()) {
		t.Error("Second delete must report false")
	}
}

func TestStore_PublisherTagsSessionID(t *testing.T) {
	updates := make(chan models.SessionState, 8)
	st := NewStore(func(id uuid.UUID, state models.SessionState) {
		if state.SessionID != id {
			t.Errorf("Snapshot session id %s does not match tag %s", state.SessionID, id)
		}
		updates <- state
	})

	s := st.Create(questionSet(1))
	s.Choose(1)

	select {
	case state := <-updates:
		if state.SessionID != s.ID() {
			t.Errorf("Expected snapshot for session %s, got %s", s.ID(), state.SessionID)
		}
	case <-time.After(time.Second):
		t.Fatal("No snapshot published for Choose")
	}
}

func drain(ch chan models.SessionState) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
