package middlewares

import (
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/server/session"
	"github.com/mdouchement/bookmarkd/internal/sferror"
)

const (
	// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
	CurrentUserContextKey = "current_user"
	// CurrentSessionContextKey is the key to retrieve the current_session from echo.Context.
	CurrentSessionContextKey = "current_session"
)

// Session returns a Session auth middleware.
// The token is read from the session cookie or from the Authorization header.
// It stores current_user and current_session into echo.Context.
func Session(m session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := session.Token(c.Request())
			if token == "" {
				return sferror.Unauthorized("Invalid login credentials.")
			}

			// Find, validate and store current_session for handlers.
			session, user, err := m.Validate(token)
			if err != nil {
				return err
			}

			c.Set(CurrentSessionContextKey, session)
			c.Set(CurrentUserContextKey, user)
			return next(c)
		}
	}
}
