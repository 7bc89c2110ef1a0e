package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ctg-quiz-service/internal/domain"
)

// HintProvider looks up a hint for a question. Implementations never return
// an error; on failure they degrade to a user-safe fallback string.
type HintProvider interface {
	FetchHint(ctx context.Context, questionText string) string
}

// SessionConfig carries the per-attempt quiz constants. Zero values fall back
// to the defaults below.
type SessionConfig struct {
	QuizLength   int
	QuestionTime int // seconds per question
	PassPercent  int
	TickInterval time.Duration
}

const (
	defaultQuizLength   = 20
	defaultQuestionTime = 30
	defaultPassPercent  = 75
)

func (c SessionConfig) withDefaults() SessionConfig {
	if c.QuizLength <= 0 {
		c.QuizLength = defaultQuizLength
	}
	if c.QuestionTime <= 0 {
		c.QuestionTime = defaultQuestionTime
	}
	if c.PassPercent <= 0 {
		c.PassPercent = defaultPassPercent
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Session owns the state of one candidate's quiz attempt: the sampled plan,
// per-question answer records, score, countdown, hint lifecycle, and the
// screen phase. All state is guarded by one mutex; commands run to completion
// under it. The countdown and hint fetches are the only background work, and
// both re-validate a generation counter before touching state, so a tick or
// hint resolution issued for an earlier question can never land on a later one.
type Session struct {
	id       string
	cfg      SessionConfig
	hints    HintProvider
	now      func() time.Time
	detached bool

	mu          sync.Mutex
	rnd         *rand.Rand
	phase       domain.Phase
	candidate   string
	plan        []domain.Question
	answers     []domain.AnswerRecord
	score       int
	current     int
	timeLeft    int
	completedAt time.Time

	timerGen  uint64
	timerStop chan struct{}

	hintGen     uint64
	hintText    string
	hintLoading bool

	subscribers map[chan domain.Snapshot]struct{}
}

// NewSession creates a session whose countdown is driven by a background
// ticker armed per question.
func NewSession(id string, cfg SessionConfig, hints HintProvider) *Session {
	return newSession(id, cfg, hints, false)
}

// NewDetachedSession creates a session with no background timer; the caller
// drives the countdown through Tick. Used for deterministic tests.
func NewDetachedSession(id string, cfg SessionConfig, hints HintProvider) *Session {
	return newSession(id, cfg, hints, true)
}

func newSession(id string, cfg SessionConfig, hints HintProvider, detached bool) *Session {
	return &Session{
		id:          id,
		cfg:         cfg.withDefaults(),
		hints:       hints,
		now:         time.Now,
		detached:    detached,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:       domain.PhaseNotStarted,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start begins a fresh attempt: samples a new plan, resets score, answers and
// index, and arms the timer for question zero. A blank trimmed name or an
// empty bank makes Start a no-op, matching the disabled start button in the
// UI. Start is legal from any phase; restarting mid-attempt abandons the old
// plan.
func (s *Session) Start(candidateName string, bank []domain.Question) {
	name := strings.TrimSpace(candidateName)
	if name == "" || len(bank) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := SamplePlan(bank, s.cfg.QuizLength, s.rnd)
	if err != nil {
		return
	}

	s.candidate = name
	s.plan = plan
	s.answers = make([]domain.AnswerRecord, len(plan))
	for i := range s.answers {
		s.answers[i] = domain.AnswerRecord{State: domain.AnswerUnanswered, OptionIndex: -1}
	}
	s.score = 0
	s.current = 0
	s.completedAt = time.Time{}
	s.clearHintLocked()
	s.phase = domain.PhaseInProgress
	s.armTimerLocked()
	s.broadcastLocked()
}

// SelectAnswer records the candidate's choice for the current question.
// Ignored outside InProgress, for an out-of-range index, or when the question
// is already resolved (double submit, or a click racing a timeout).
func (s *Session) SelectAnswer(optionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseInProgress {
		return
	}
	if s.answers[s.current].State != domain.AnswerUnanswered {
		return
	}
	if optionIndex < 0 || optionIndex >= len(s.plan[s.current].Options) {
		return
	}

	s.answers[s.current] = domain.AnswerRecord{State: domain.AnswerSelected, OptionIndex: optionIndex}
	if optionIndex == s.plan[s.current].CorrectAnswerIndex {
		s.score++
	}
	s.cancelTimerLocked()
	s.phase = domain.PhaseAnswered
	s.broadcastLocked()
}

// Tick advances the countdown by one second. Background sessions are ticked
// by their own timer; detached sessions are ticked by the caller.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseInProgress {
		return
	}
	s.tickLocked()
}

// tick is the background-timer entry point. The generation check discards
// ticks scheduled before a cancellation took effect.
func (s *Session) tick(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen || s.phase != domain.PhaseInProgress {
		return false
	}
	s.tickLocked()
	return s.phase == domain.PhaseInProgress
}

func (s *Session) tickLocked() {
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	if s.timeLeft == 0 && s.answers[s.current].State == domain.AnswerUnanswered {
		s.answers[s.current] = domain.AnswerRecord{State: domain.AnswerTimedOut, OptionIndex: -1}
		s.cancelTimerLocked()
		s.phase = domain.PhaseAnswered
	}
	s.broadcastLocked()
}

// Advance moves past a resolved question. On the last plan position the
// attempt completes; otherwise the next question starts with a cleared hint
// and a re-armed timer. Returns true when this call completed the attempt.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAnswered {
		return false
	}

	s.clearHintLocked()
	if s.current == len(s.plan)-1 {
		s.phase = domain.PhaseCompleted
		s.completedAt = s.now()
		s.broadcastLocked()
		return true
	}

	s.current++
	s.phase = domain.PhaseInProgress
	s.armTimerLocked()
	s.broadcastLocked()
	return false
}

// RequestHint issues at most one hint fetch for the current question.
// Duplicate requests while loading or already loaded are no-ops. The
// resolution applies only if the session is still on the question the hint
// was requested for; otherwise it is discarded.
func (s *Session) RequestHint(ctx context.Context) {
	if s.hints == nil {
		return
	}
	s.mu.Lock()
	if s.phase != domain.PhaseInProgress ||
		s.answers[s.current].State != domain.AnswerUnanswered ||
		s.hintLoading || s.hintText != "" {
		s.mu.Unlock()
		return
	}
	s.hintLoading = true
	gen := s.hintGen
	questionText := s.plan[s.current].QuestionText
	s.broadcastLocked()
	s.mu.Unlock()

	go func() {
		text := s.hints.FetchHint(ctx, questionText)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.hintGen {
			return // question advanced or session reset while in flight
		}
		s.hintLoading = false
		s.hintText = text
		s.broadcastLocked()
	}()
}

// EnterReview shows the answer review. Legal from Completed or Certificate.
func (s *Session) EnterReview() {
	s.transition([]domain.Phase{domain.PhaseCompleted, domain.PhaseCertificate}, domain.PhaseReview)
}

// ExitReview returns to the results screen.
func (s *Session) ExitReview() {
	s.transition([]domain.Phase{domain.PhaseReview}, domain.PhaseCompleted)
}

// EnterCertificate shows the certificate. Legal from Completed or Review.
func (s *Session) EnterCertificate() {
	s.transition([]domain.Phase{domain.PhaseCompleted, domain.PhaseReview}, domain.PhaseCertificate)
}

// ExitCertificate returns to the results screen.
func (s *Session) ExitCertificate() {
	s.transition([]domain.Phase{domain.PhaseCertificate}, domain.PhaseCompleted)
}

func (s *Session) transition(from []domain.Phase, to domain.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range from {
		if s.phase == p {
			s.phase = to
			s.broadcastLocked()
			return
		}
	}
}

// Result returns the finalized attempt outcome, or ErrSessionNotCompleted
// while the attempt is still running.
func (s *Session) Result() (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishedLocked() {
		return domain.Result{}, domain.ErrSessionNotCompleted
	}
	return domain.NewResult(s.id, s.candidate, s.score, len(s.plan), s.cfg.PassPercent, s.completedAt), nil
}

func (s *Session) finishedLocked() bool {
	switch s.phase {
	case domain.PhaseCompleted, domain.PhaseReview, domain.PhaseCertificate:
		return true
	}
	return false
}

// Snapshot returns the current read-only view. Safe to call repeatedly from
// any goroutine; it never mutates session state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every state change,
// primed with the current one. The cancel function must be called to release
// the subscription.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown and drops all subscribers. The session is not
// usable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	s.hintGen++
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) armTimerLocked() {
	s.cancelTimerLocked()
	s.timeLeft = s.cfg.QuestionTime
	if s.detached {
		return
	}
	gen := s.timerGen
	stop := make(chan struct{})
	s.timerStop = stop
	go s.countdown(gen, stop)
}

func (s *Session) cancelTimerLocked() {
	s.timerGen++
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

func (s *Session) countdown(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick(gen) {
				return
			}
		}
	}
}

func (s *Session) clearHintLocked() {
	s.hintGen++
	s.hintText = ""
	s.hintLoading = false
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest buffered snapshot so a slow reader never
			// blocks a state transition.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID:           s.id,
		Phase:               s.phase,
		CandidateName:       s.candidate,
		QuestionIndex:       s.current,
		TotalQuestions:      len(s.plan),
		CorrectAnswerIndex:  -1,
		SelectedAnswerIndex: -1,
		TimeRemaining:       s.timeLeft,
		Score:               s.score,
		HintLoading:         s.hintLoading,
		Hint:                s.hintText,
	}

	if s.phase == domain.PhaseInProgress || s.phase == domain.PhaseAnswered {
		q := s.plan[s.current]
		snap.QuestionText = q.QuestionText
		snap.Options = append([]string(nil), q.Options...)
		record := s.answers[s.current]
		if record.State != domain.AnswerUnanswered {
			snap.CorrectAnswerIndex = q.CorrectAnswerIndex
			snap.TimedOut = record.State == domain.AnswerTimedOut
			if record.State == domain.AnswerSelected {
				snap.SelectedAnswerIndex = record.OptionIndex
			}
		}
	}

	if s.phase == domain.PhaseReview {
		snap.Review = make([]domain.ReviewEntry, len(s.plan))
		for i, q := range s.plan {
			snap.Review[i] = domain.ReviewEntry{Question: q, Answer: s.answers[i]}
		}
	}

	if s.finishedLocked() {
		result := domain.NewResult(s.id, s.candidate, s.score, len(s.plan), s.cfg.PassPercent, s.completedAt)
		snap.Result = &result
	}
	return snap
}
