// Package session holds the pet/quiz play-through state machine. A session
// lives only in memory: it is created when a question set is ready and
// destroyed when the player goes back to the upload screen. All transitions
// are silent no-ops outside their valid state, because the UI only triggers
// them from already-enabled controls.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"studybuddy-backend/internal/models"
)

const (
	InitialHealth = 70
	MinHealth     = 0
	MaxHealth     = 100

	// FeedBonus is the fixed health reward for feeding the pet.
	FeedBonus = 6
)

const (
	DefaultEatingDuration  = 1800 * time.Millisecond
	DefaultGrowingDuration = 1200 * time.Millisecond
)

// Publisher receives a state snapshot after every observable transition,
// including timer-driven animation flag clears.
type Publisher func(state models.SessionState)

type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	questions []models.Question

	currentIndex  int
	health        int
	selectedIndex int
	answerLocked  bool
	canFeed       bool
	isEating      bool
	isGrowing     bool
	completed     bool

	eatingDuration  time.Duration
	growingDuration time.Duration
	eatingTimer     *time.Timer
	growingTimer    *time.Timer

	closed  bool
	publish Publisher
}

func New(questions []models.Question, publish Publisher) *Session {
	return &Session{
		id:              uuid.New(),
		questions:       questions,
		health:          InitialHealth,
		selectedIndex:   -1,
		eatingDuration:  DefaultEatingDuration,
		growingDuration: DefaultGrowingDuration,
		publish:         publish,
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// SetAnimationDurations overrides the timer durations. Used by tests.
func (s *Session) SetAnimationDurations(eating, growing time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eatingDuration = eating
	s.growingDuration = growing
}

// Choose records the answer for the current question. It is a no-op when the
// session is completed, the answer is already locked, the question list is
// empty, or the index is out of range. The returned correctness is nil when
// the question is not gradable; ungradable questions apply no health delta
// and grant no feed permission.
func (s *Session) Choose(index int) (models.SessionState, *bool) {
	s.mu.Lock()

	if s.closed || s.completed || s.answerLocked || len(s.questions) == 0 ||
		index < 0 || index >= len(s.questions[s.currentIndex].Options) {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state, nil
	}

	q := s.questions[s.currentIndex]
	s.selectedIndex = index
	s.answerLocked = true

	var correct *bool
	if q.Gradable() {
		ok := index == q.CorrectIndex
		correct = &ok

		delta := q.HealthImpact.Wrong
		if ok {
			delta = q.HealthImpact.Correct
		}
		s.health = clamp(s.health + delta)
		s.canFeed = ok

		if ok {
			s.startGrowingLocked()
		}
	}

	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)
	return state, correct
}

// Advance moves to the next question, or marks the set complete on the last
// one. No-op unless an answer is locked.
func (s *Session) Advance() models.SessionState {
	s.mu.Lock()

	if s.closed || !s.answerLocked {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state
	}

	s.selectedIndex = -1
	s.answerLocked = false
	s.canFeed = false

	if s.currentIndex >= len(s.questions)-1 {
		s.completed = true
	} else {
		s.currentIndex++
	}

	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)
	return state
}

// Feed consumes the single-use feed permission granted by a correct answer.
func (s *Session) Feed() models.SessionState {
	s.mu.Lock()

	if s.closed || !s.canFeed {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state
	}

	s.canFeed = false
	s.health = clamp(s.health + FeedBonus)
	s.startEatingLocked()

	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)
	return state
}

// ContinueFromComplete replays the same question set from the start. Health
// carries over.
func (s *Session) ContinueFromComplete() models.SessionState {
	s.mu.Lock()

	if s.closed || !s.completed {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state
	}

	s.completed = false
	s.currentIndex = 0
	s.selectedIndex = -1
	s.answerLocked = false
	s.canFeed = false

	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)
	return state
}

func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close tears the session down and cancels any pending animation timers so
// they cannot mutate state after the player has moved on.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.eatingTimer != nil {
		s.eatingTimer.Stop()
		s.eatingTimer = nil
	}
	if s.growingTimer != nil {
		s.growingTimer.Stop()
		s.growingTimer = nil
	}
}

// startEatingLocked (re)arms the eating animation timer. A superseding
// trigger cancels the previous timer first.
func (s *Session) startEatingLocked() {
	if s.eatingTimer != nil {
		s.eatingTimer.Stop()
	}
	s.isEating = true
	s.eatingTimer = time.AfterFunc(s.eatingDuration, func() {
		s.clearFlag(&s.isEating)
	})
}

func (s *Session) startGrowingLocked() {
	if s.growingTimer != nil {
		s.growingTimer.Stop()
	}
	s.isGrowing = true
	s.growingTimer = time.AfterFunc(s.growingDuration, func() {
		s.clearFlag(&s.isGrowing)
	})
}

func (s *Session) clearFlag(flag *bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	*flag = false
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(state)
}

func (s *Session) snapshotLocked() models.SessionState {
	state := models.SessionState{
		SessionID:     s.id,
		CurrentIndex:  s.currentIndex,
		QuestionCount: len(s.questions),
		Health:        s.health,
		SelectedIndex: s.selectedIndex,
		AnswerLocked:  s.answerLocked,
		CanFeed:       s.canFeed,
		IsEating:      s.isEating,
		IsGrowing:     s.isGrowing,
		Completed:     s.completed,
	}
	if !s.completed && s.currentIndex < len(s.questions) {
		q := s.questions[s.currentIndex]
		state.Question = &q
	}
	return state
}

func (s *Session) notify(state models.SessionState) {
	if s.publish != nil {
		s.publish(state)
	}
}

func clamp(health int) int {
	if health < MinHealth {
		return MinHealth
	}
	if health > MaxHealth {
		return MaxHealth
	}
	return health
}
