package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// sessionSlotPrefix names the key-value slot holding a session principal
const sessionSlotPrefix = "currentUser:"

// --- DTOs ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Session struct {
	ID        string         `json:"session_id"`
	Principal model.Employee `json:"principal"`
	CreatedAt time.Time      `json:"created_at"`
	Token     string         `json:"token,omitempty"`
}

type SessionConfig struct {
	Secret     []byte
	Expiration time.Duration
}

// --- Interface ---

type SessionService interface {
	Authenticate(ctx context.Context, username, password string) (model.Employee, error)
	Login(ctx context.Context, req LoginRequest) (Session, error)
	Restore(ctx context.Context, sessionID string) (Session, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string, emp model.Employee) error
	ParseToken(token string) (string, error)
}

type sessionService struct {
	store *store.Store
	slot  repository.SessionSlot
	cfg   SessionConfig
	log   zerolog.Logger
}

func NewSessionService(st *store.Store, slot repository.SessionSlot, cfg SessionConfig, log zerolog.Logger) SessionService {
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &sessionService{
		store: st,
		slot:  slot,
		cfg:   cfg,
		log:   log.With().Str("service", "session").Logger(),
	}
}

// Authenticate matches the username exactly (case-sensitive) against active
// employees and compares the password with the stored bcrypt hash.
func (s *sessionService) Authenticate(_ context.Context, username, password string) (model.Employee, error) {
	emp, ok := s.store.Employees.Find(func(e model.Employee) bool {
		return e.Active && e.HasLogin() && e.Username == username
	})
	if !ok {
		return model.Employee{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.Password), []byte(password)); err != nil {
		return model.Employee{}, ErrInvalidCredentials
	}
	return emp, nil
}

func (s *sessionService) Login(ctx context.Context, req LoginRequest) (Session, error) {
	emp, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.log.Info().Str("username", req.Username).Msg("login rejected")
		return Session{}, err
	}

	sess := Session{ID: uuid.NewString(), Principal: emp, CreatedAt: time.Now()}
	if err := s.save(ctx, sess); err != nil {
		return Session{}, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":  sess.ID,
		"sub":  emp.ID,
		"role": emp.Role,
		"exp":  time.Now().Add(s.cfg.Expiration).Unix(),
	})
	sess.Token, err = token.SignedString(s.cfg.Secret)
	if err != nil {
		return Session{}, errors.New("failed to generate token")
	}

	s.log.Info().Str("employee_id", emp.ID).Msg("logged in")
	return sess, nil
}

// Restore loads a session and re-validates its principal. A session whose
// employee was deleted or deactivated is cleared and reported as expired.
func (s *sessionService) Restore(ctx context.Context, sessionID string) (Session, error) {
	raw, err := s.slot.Get(ctx, slotKey(sessionID))
	if errors.Is(err, repository.ErrSlotEmpty) {
		return Session{}, ErrSessionExpired
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.clear(ctx, sessionID)
		return Session{}, ErrSessionExpired
	}

	emp, ok := s.store.Employees.Get(sess.Principal.ID)
	if !ok || !emp.Active {
		s.clear(ctx, sessionID)
		return Session{}, ErrSessionExpired
	}
	sess.Principal = emp
	return sess, nil
}

func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.slot.Delete(ctx, slotKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Refresh rewrites the principal of a live session after its employee changed
func (s *sessionService) Refresh(ctx context.Context, sessionID string, emp model.Employee) error {
	sess, err := s.Restore(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Principal.ID != emp.ID {
		return nil
	}
	sess.Principal = emp
	return s.save(ctx, sess)
}

// ParseToken verifies a session token and returns the session id it carries
func (s *sessionService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrSessionExpired
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrSessionExpired
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrSessionExpired
	}
	return sid, nil
}

func (s *sessionService) save(ctx context.Context, sess Session) error {
	sess.Token = ""
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.slot.Set(ctx, slotKey(sess.ID), raw); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *sessionService) clear(ctx context.Context, sessionID string) {
	if err := s.slot.Delete(ctx, slotKey(sessionID)); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear stale session")
	}
}

func slotKey(sessionID string) string {
	return sessionSlotPrefix + sessionID
}
