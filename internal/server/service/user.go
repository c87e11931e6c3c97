package service

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/server/serializer"
	"github.com/mdouchement/bookmarkd/internal/server/session"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
)

// MinPasswordLength is the minimum length of a password.
const MinPasswordLength = 6

var email = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type (
	// RegisterParams are used to register a user.
	RegisterParams struct {
		Params
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Params
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// UpdatePasswordParams are used to change the password of a user.
	UpdatePasswordParams struct {
		Params
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	// A Login is the render of a successful authentication.
	Login struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}

	// A UserService handles users registration and authentication.
	UserService struct {
		db       database.Client
		sessions session.Manager
	}
)

// NewUser returns a new UserService.
func NewUser(db database.Client, sessions session.Manager) *UserService {
	return &UserService{
		db:       db,
		sessions: sessions,
	}
}

// Register creates the user along with its default tab.
func (s *UserService) Register(params RegisterParams) (Render, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.TrimSpace(params.Email)

	if params.Username == "" || params.Email == "" || params.Password == "" {
		return nil, sferror.BadRequest("Username, email and password are required.")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, sferror.BadRequest("Password must contain at least 6 characters.")
	}
	if !email.MatchString(params.Email) {
		return nil, sferror.BadRequest("Invalid email.")
	}

	// Check if the email and the username are free to use.
	taken, err := s.exists(s.db.FindUserByMail(params.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, sferror.BadRequest("This email is already registered.")
	}

	taken, err = s.exists(s.db.FindUserByUsername(params.Username))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, sferror.BadRequest("This username is already taken.")
	}

	// Initialize user
	user := &model.User{
		Username: params.Username,
		Email:    params.Email,
	}

	// Crypt password
	user.Password, err = argon2.GenerateFromPasswordString(params.Password, argon2.Default)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}
	user.PasswordUpdatedAt = time.Now().Unix()

	// Persist the models
	err = s.db.Transaction(func(tx database.Tx) error {
		if err := tx.Save(user); err != nil {
			if tx.IsAlreadyExists(err) {
				return sferror.BadRequest("This username or email is already taken.")
			}
			return errors.Wrap(err, "could not persist user")
		}

		tab := &model.Tab{
			UserID: user.ID,
			Name:   model.DefaultTabName,
		}
		return errors.Wrap(tx.Save(tab), "could not persist default tab")
	})
	if err != nil {
		return nil, err
	}

	return M{
		"message": "Registration successful.",
		"user":    serializer.User(user),
	}, nil
}

// Login authenticates the user and opens a new session.
func (s *UserService) Login(params LoginParams) (*Login, error) {
	// Retrieve user
	user, err := s.db.FindUserByUsername(strings.TrimSpace(params.Username))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, sferror.Unauthorized("Invalid username or password.")
		}
		return nil, errors.Wrap(err, "could not get user")
	}

	// Verify password
	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, sferror.Unauthorized("Invalid username or password.")
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	_, token, err := s.sessions.Generate(user, params.UserAgent)
	if err != nil {
		return nil, err
	}

	return &Login{
		Token:    token,
		Username: user.Username,
		Message:  "Login successful.",
	}, nil
}

// Logout revokes the session carried by the given token.
// Invalid or already revoked tokens are ignored.
func (s *UserService) Logout(token string) error {
	if token == "" {
		return nil
	}

	err := s.sessions.Revoke(token)
	if err != nil && sferror.StatusCode(err) == http.StatusUnauthorized {
		return nil
	}
	return err
}

// UpdatePassword changes the password of the user.
// All the sessions of the user are revoked and a new one is opened.
func (s *UserService) UpdatePassword(user *model.User, params UpdatePasswordParams) (*Login, error) {
	// Verify CurrentPassword
	if err := argon2.CompareHashAndPasswordString(user.Password, params.CurrentPassword); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, sferror.Unauthorized("The current password you entered is incorrect.")
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	if len(params.NewPassword) < MinPasswordLength {
		return nil, sferror.BadRequest("Password must contain at least 6 characters.")
	}

	// Crypt & update password
	pw, err := argon2.GenerateFromPasswordString(params.NewPassword, argon2.Default)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}
	user.Password = pw
	user.PasswordUpdatedAt = time.Now().Unix()

	err = s.db.Transaction(func(tx database.Tx) error {
		if err := tx.Save(user); err != nil {
			return errors.Wrap(err, "could not persist user")
		}
		return tx.DeleteSessionsByUserID(user.ID)
	})
	if err != nil {
		return nil, err
	}

	_, token, err := s.sessions.Generate(user, params.UserAgent)
	if err != nil {
		return nil, err
	}

	return &Login{
		Token:    token,
		Username: user.Username,
		Message:  "Password updated.",
	}, nil
}

func (s *UserService) exists(_ *model.User, err error) (bool, error) {
	if err != nil {
		if s.db.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "could not get access to database")
	}
	return true, nil
}
