package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// A Manager manages sessions.
	Manager interface {
		// TTL returns the lifetime of a session.
		TTL() time.Duration
		// Generate creates and persists a new session for the given user.
		// It returns the session along with its signed token.
		Generate(user *model.User, userAgent string) (*model.Session, string, error)
		// Validate validates a signed token and returns its session and its user.
		Validate(token string) (*model.Session, *model.User, error)
		// Revoke deletes the session carried by the given token.
		Revoke(token string) error
	}

	// Claims are the claims carried by a session token.
	// The subject is the user ID and the token ID is the session ID.
	Claims struct {
		jwt.RegisteredClaims
		Username string `json:"username"`
	}

	manager struct {
		db         database.Client
		signingKey []byte
		ttl        time.Duration
	}
)

// NewManager returns a new manager.
func NewManager(db database.Client, signingKey []byte, ttl time.Duration) Manager {
	return &manager{
		db:         db,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

func (m *manager) TTL() time.Duration {
	return m.ttl
}

func (m *manager) Generate(user *model.User, userAgent string) (*model.Session, string, error) {
	now := time.Now().UTC()

	session := &model.Session{
		ExpireAt:  now.Add(m.ttl),
		UserID:    user.ID,
		UserAgent: userAgent,
	}
	if err := m.db.Save(session); err != nil {
		return nil, "", errors.Wrap(err, "could not persist session")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpireAt),
		},
		Username: user.Username,
	})

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return nil, "", errors.Wrap(err, "could not sign session token")
	}

	return session, signed, nil
}

func (m *manager) Validate(token string) (*model.Session, *model.User, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, nil, sferror.Unauthorized("Invalid login credentials.")
	}

	session, err := m.db.FindSessionByUserID(claims.ID, claims.Subject)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, sferror.Unauthorized("Invalid login credentials.")
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	if session.ExpireAt.Before(time.Now()) {
		return nil, nil, sferror.Unauthorized("Session has expired.")
	}

	// Get current_user.
	user, err := m.db.FindUser(claims.Subject)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, sferror.Unauthorized("Invalid login credentials.")
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	// Check if password has changed since token was generated.
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() < user.PasswordUpdatedAt {
		return nil, nil, sferror.Unauthorized("Revoked token.")
	}

	return session, user, nil
}

func (m *manager) Revoke(token string) error {
	session, _, err := m.Validate(token)
	if err != nil {
		return err
	}

	return errors.Wrap(m.db.Delete(session), "could not delete session")
}

func (m *manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	return claims, nil
}
