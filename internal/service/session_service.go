package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/docquiz/docquiz-backend/internal/config"
	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid session token")
)

// submittedRetention is how long a submitted session stays queryable before
// the sweep removes it.
const submittedRetention = time.Hour

// SessionClaims is the JWT payload binding a token to one exam session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// sessionEntry is one live attempt in the registry.
type sessionEntry struct {
	session     *exam.Session
	source      string
	submittedAt time.Time // zero until submitted
}

// SessionService owns the in-memory registry of live exam sessions, the
// session tokens and the single 1 Hz tick loop driving every countdown.
type SessionService struct {
	cfg  *config.Config
	sink ResultSink
	log  zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
}

// NewSessionService creates a new SessionService.
func NewSessionService(cfg *config.Config, sink ResultSink, log zerolog.Logger) *SessionService {
	return &SessionService{
		cfg:      cfg,
		sink:     sink,
		log:      log.With().Str("component", "session_service").Logger(),
		sessions: make(map[uuid.UUID]*sessionEntry),
	}
}

// Create starts a new exam session over the given set and issues its token.
func (s *SessionService) Create(set *exam.QuestionSet, source string, timeLimitSeconds int) (*model.CreateSessionResponse, error) {
	if timeLimitSeconds <= 0 {
		timeLimitSeconds = s.cfg.ExamDurationSeconds
	}

	session, err := exam.NewSession(set, timeLimitSeconds)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	token, err := s.GenerateSessionToken(id)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{session: session, source: source}
	s.mu.Unlock()

	s.log.Info().
		Str("session_id", id.String()).
		Int("questions", set.Len()).
		Int("time_limit", timeLimitSeconds).
		Msg("Exam session started")

	return &model.CreateSessionResponse{
		SessionID:        id,
		Token:            token,
		TimeLimitSeconds: timeLimitSeconds,
		Total:            set.Len(),
		Questions:        model.SanitizeQuestions(set.Questions()),
	}, nil
}

// GenerateSessionToken signs an HS256 token bound to a session id.
func (s *SessionService) GenerateSessionToken(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTokenTTL)),
		},
		SessionID: sessionID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ParseSessionToken validates a token and returns the session id it names.
func (s *SessionService) ParseSessionToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.SessionID == "" {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// Get returns a live session by id.
func (s *SessionService) Get(id uuid.UUID) (*exam.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

// State builds the reloadable view of a session.
func (s *SessionService) State(id uuid.UUID) (*model.SessionState, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	snap := session.Snapshot()
	return &model.SessionState{
		SessionID:       id,
		Status:          snap.Status,
		CurrentIndex:    snap.CurrentIndex,
		TimeRemaining:   snap.TimeRemaining,
		Answers:         snap.Answers,
		MarkedQuestions: snap.MarkedQuestions,
		StartedAt:       snap.StartedAt,
		Progress:        session.Progress(),
	}, nil
}

// Submit finalizes a session and dispatches its result to the sink.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID) (*exam.ScoreReport, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	report, err := entry.session.Submit()
	if err != nil {
		return nil, err
	}

	s.finalize(ctx, id, entry, report)
	return report, nil
}

// Run drives every live session at 1 Hz until the context is canceled. One
// loop serves all sessions — per-session timers would drift apart under load.
func (s *SessionService) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.log.Info().Msg("Session tick loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Session tick loop stopped")
			return
		case <-ticker.C:
			s.tickAll(ctx)
		}
	}
}

// tickEntry is one registry snapshot row: submittedAt is copied under the
// lock because finalize writes it concurrently from the submit path.
type tickEntry struct {
	entry       *sessionEntry
	submittedAt time.Time
}

// tickAll advances every countdown, dispatches auto-submit results and
// sweeps submitted sessions past retention.
func (s *SessionService) tickAll(ctx context.Context) {
	s.mu.Lock()
	entries := make(map[uuid.UUID]tickEntry, len(s.sessions))
	for id, entry := range s.sessions {
		entries[id] = tickEntry{entry: entry, submittedAt: entry.submittedAt}
	}
	s.mu.Unlock()

	now := time.Now()
	for id, item := range entries {
		if !item.submittedAt.IsZero() {
			if now.Sub(item.submittedAt) > submittedRetention {
				s.mu.Lock()
				delete(s.sessions, id)
				s.mu.Unlock()
				s.log.Debug().Str("session_id", id.String()).Msg("Submitted session swept")
			}
			continue
		}

		if report := item.entry.session.Tick(); report != nil {
			s.log.Info().Str("session_id", id.String()).Msg("Session auto-submitted on timeout")
			s.finalize(ctx, id, item.entry, report)
		}
	}
}

// finalize stamps the entry submitted and hands the result to the sink.
func (s *SessionService) finalize(ctx context.Context, id uuid.UUID, entry *sessionEntry, report *exam.ScoreReport) {
	submittedAt := time.Now()

	s.mu.Lock()
	entry.submittedAt = submittedAt
	s.mu.Unlock()

	result := model.NewExamResult(id, entry.source, report, entry.session.Snapshot(), submittedAt)
	if err := s.sink.Enqueue(ctx, result); err != nil {
		s.log.Error().Err(err).Str("session_id", id.String()).Msg("Result dispatch failed")
		return
	}

	s.log.Info().
		Str("session_id", id.String()).
		Int("correct", report.Correct).
		Int("percentage", report.Percentage).
		Msg("Result dispatched")
}

// LiveCount reports how many sessions are in the registry.
func (s *SessionService) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
