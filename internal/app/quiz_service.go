package app

import (
	"context"

	"github.com/rs/zerolog"

	"ctg-quiz-service/internal/domain"
)

// SessionRepository abstracts how candidate sessions are stored
// (in-memory, Redis-tracked, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// BankRepository supplies the parsed question bank (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) ([]domain.Question, error)
}

// ResultArchive persists finished attempts. Archival is best effort; failures
// must never surface to the candidate.
type ResultArchive interface {
	SaveAttempt(ctx context.Context, result domain.Result) error
}

// SessionFactory builds a session for a new candidate connection.
type SessionFactory func(sessionID string) *Session

// NewSessionFactory binds the quiz constants and hint provider into a factory
// that session stores use to seed new sessions.
func NewSessionFactory(cfg SessionConfig, hints HintProvider) SessionFactory {
	return func(sessionID string) *Session {
		return NewSession(sessionID, cfg, hints)
	}
}

// QuizService contains the quiz use cases: one timed attempt per session,
// driven by commands from the transport.
type QuizService struct {
	sessions SessionRepository
	bank     BankRepository
	archive  ResultArchive
	log      zerolog.Logger
}

func NewQuizService(sessions SessionRepository, bank BankRepository, archive ResultArchive, log zerolog.Logger) *QuizService {
	return &QuizService{sessions: sessions, bank: bank, archive: archive, log: log}
}

// Attach registers (or rejoins) a candidate session and returns its snapshot.
func (s *QuizService) Attach(sessionID string) domain.Snapshot {
	return s.sessions.GetOrCreate(sessionID).Snapshot()
}

// Start loads the bank and begins a fresh attempt. A bank load failure is
// returned so the transport can show a retryable error; a blank name is a
// silent no-op inside the session.
func (s *QuizService) Start(ctx context.Context, sessionID, candidateName string) error {
	session := s.sessions.GetOrCreate(sessionID)
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return err
	}
	session.Start(candidateName, bank)
	return nil
}

// SelectAnswer records an answer for the session's current question.
func (s *QuizService) SelectAnswer(sessionID string, optionIndex int) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.SelectAnswer(optionIndex)
	return nil
}

// Advance moves the session past a resolved question, archiving the attempt
// when this advance completes it.
func (s *QuizService) Advance(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if completed := session.Advance(); completed && s.archive != nil {
		result, err := session.Result()
		if err != nil {
			return nil
		}
		if err := s.archive.SaveAttempt(ctx, result); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("attempt archive failed")
		}
	}
	return nil
}

// RequestHint triggers a hint fetch for the session's current question.
func (s *QuizService) RequestHint(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.RequestHint(ctx)
	return nil
}

// EnterReview and its siblings are pure phase moves; invalid ones are silent
// no-ops inside the session.
func (s *QuizService) EnterReview(sessionID string) error {
	return s.phaseMove(sessionID, (*Session).EnterReview)
}

func (s *QuizService) ExitReview(sessionID string) error {
	return s.phaseMove(sessionID, (*Session).ExitReview)
}

func (s *QuizService) EnterCertificate(sessionID string) error {
	return s.phaseMove(sessionID, (*Session).EnterCertificate)
}

func (s *QuizService) ExitCertificate(sessionID string) error {
	return s.phaseMove(sessionID, (*Session).ExitCertificate)
}

func (s *QuizService) phaseMove(sessionID string, move func(*Session)) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	move(session)
	return nil
}

// Result returns the finalized outcome of a completed session.
func (s *QuizService) Result(sessionID string) (domain.Result, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Result{}, domain.ErrSessionNotFound
	}
	return session.Result()
}

// Subscribe returns a channel receiving snapshots for a session. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(sessionID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave tears the session down when the candidate disconnects.
func (s *QuizService) Leave(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}
