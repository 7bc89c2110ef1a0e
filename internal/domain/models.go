package domain

import (
	"math"
	"time"
)

// Question is a single multiple-choice question. Immutable once parsed.
type Question struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// Valid reports whether the question satisfies the bank invariants:
// non-empty text, at least one non-empty option, and an in-range answer index.
func (q Question) Valid() bool {
	if q.QuestionText == "" || len(q.Options) == 0 {
		return false
	}
	for _, opt := range q.Options {
		if opt == "" {
			return false
		}
	}
	return q.CorrectAnswerIndex >= 0 && q.CorrectAnswerIndex < len(q.Options)
}

// AnswerState tracks how a plan position was resolved.
type AnswerState string

const (
	AnswerUnanswered AnswerState = "unanswered"
	AnswerSelected   AnswerState = "selected"
	AnswerTimedOut   AnswerState = "timed-out"
)

// AnswerRecord is the per-question outcome. OptionIndex is meaningful only
// when State is AnswerSelected.
type AnswerRecord struct {
	State       AnswerState `json:"state"`
	OptionIndex int         `json:"optionIndex"`
}

// Phase is the quiz session state machine position.
type Phase string

const (
	PhaseNotStarted  Phase = "not-started"
	PhaseInProgress  Phase = "in-progress"
	PhaseAnswered    Phase = "answered"
	PhaseCompleted   Phase = "completed"
	PhaseReview      Phase = "review"
	PhaseCertificate Phase = "certificate"
)

// Result is the finalized outcome of one quiz attempt.
type Result struct {
	SessionID      string    `json:"sessionId"`
	CandidateName  string    `json:"candidateName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	Passed         bool      `json:"passed"`
	Feedback       string    `json:"feedback"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Percentage converts a raw score to a rounded percentage. Zero when the
// plan is empty.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Feedback maps a percentage to the result-screen message tier.
func Feedback(percentage, passPercent int) string {
	switch {
	case percentage >= passPercent:
		return "Congratulations! You've passed!"
	case percentage >= 50:
		return "Great effort! You're getting close."
	default:
		return "Keep practicing to improve your score!"
	}
}

// NewResult assembles a Result from a finished attempt.
func NewResult(sessionID, candidate string, score, total, passPercent int, completedAt time.Time) Result {
	pct := Percentage(score, total)
	return Result{
		SessionID:      sessionID,
		CandidateName:  candidate,
		Score:          score,
		TotalQuestions: total,
		Percentage:     pct,
		Passed:         pct >= passPercent,
		Feedback:       Feedback(pct, passPercent),
		CompletedAt:    completedAt,
	}
}

// ReviewEntry pairs a plan question with how it was answered, for the
// post-quiz review screen.
type ReviewEntry struct {
	Question Question     `json:"question"`
	Answer   AnswerRecord `json:"answer"`
}

// Snapshot is the read-only view of a session that renderers consume.
// CorrectAnswerIndex and SelectedAnswerIndex are -1 until the current
// question has been resolved; correctness is never revealed early.
type Snapshot struct {
	SessionID           string        `json:"sessionId"`
	Phase               Phase         `json:"phase"`
	CandidateName       string        `json:"candidateName"`
	QuestionIndex       int           `json:"questionIndex"`
	TotalQuestions      int           `json:"totalQuestions"`
	QuestionText        string        `json:"questionText,omitempty"`
	Options             []string      `json:"options,omitempty"`
	CorrectAnswerIndex  int           `json:"correctAnswerIndex"`
	SelectedAnswerIndex int           `json:"selectedAnswerIndex"`
	TimedOut            bool          `json:"timedOut"`
	TimeRemaining       int           `json:"timeRemaining"`
	Score               int           `json:"score"`
	HintLoading         bool          `json:"hintLoading"`
	Hint                string        `json:"hint,omitempty"`
	Review              []ReviewEntry `json:"review,omitempty"`
	Result              *Result       `json:"result,omitempty"`
}
