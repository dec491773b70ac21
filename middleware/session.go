package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"modpanel/models"
	"modpanel/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionCookieName = "modpanel_session"

// SessionBackend persists sessions. Both the SQLite store and the Redis
// session store implement it.
type SessionBackend interface {
	LoadSession(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, sess *models.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// Sessions attaches a server-side session to every request. New sessions
// are only written once something is stored in them.
type Sessions struct {
	backend SessionBackend
	secret  []byte
	ttl     time.Duration
	secure  bool
	logger  *zap.Logger
	now     func() time.Time
}

func NewSessions(backend SessionBackend, secret string, ttl time.Duration, secure bool, logger *zap.Logger) *Sessions {
	return &Sessions{
		backend: backend,
		secret:  []byte(secret),
		ttl:     ttl,
		secure:  secure,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.load(r)
		if sess == nil {
			var err error
			sess, err = s.issue(w, "", 0)
			if err != nil {
				s.logger.Error("failed to issue session", zap.Error(err))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		if sess.UserID != "" {
			ctx = SetUserID(ctx, sess.UserID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// load returns the cookie's live session, or nil.
func (s *Sessions) load(r *http.Request) *models.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	claims, err := ValidateToken(s.secret, cookie.Value)
	if err != nil {
		return nil
	}

	sess, err := s.backend.LoadSession(r.Context(), claims.SessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load session", zap.Error(err))
		}
		// The id stays valid for its token lifetime even before the
		// session has been persisted.
		return &models.Session{ID: claims.SessionID, ExpiresAt: claims.ExpiresAt.Time}
	}
	if !s.now().Before(sess.ExpiresAt) {
		return nil
	}
	return sess
}

func (s *Sessions) issue(w http.ResponseWriter, userID string, channelID int64) (*models.Session, error) {
	sess := &models.Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		ActiveChannelID: channelID,
		ExpiresAt:       s.now().Add(s.ttl),
	}
	token, err := GenerateToken(s.secret, sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Save persists the session.
func (s *Sessions) Save(ctx context.Context, sess *models.Session) error {
	return s.backend.SaveSession(ctx, sess)
}

// Login binds the user to a fresh session id. The active channel carries
// over from the anonymous session.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	old := GetSession(r)
	var channelID int64
	if old != nil {
		channelID = old.ActiveChannelID
	}

	sess, err := s.issue(w, userID, channelID)
	if err != nil {
		return err
	}
	if err := s.backend.SaveSession(r.Context(), sess); err != nil {
		return err
	}
	if old != nil {
		if err := s.backend.DeleteSession(r.Context(), old.ID); err != nil {
			s.logger.Warn("failed to drop old session", zap.Error(err))
		}
		*old = *sess
	}
	return nil
}

// Logout destroys the session and clears the cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	if sess := GetSession(r); sess != nil {
		if err := s.backend.DeleteSession(r.Context(), sess.ID); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
