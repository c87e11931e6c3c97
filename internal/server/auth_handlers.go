package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/server/serializer"
	"github.com/mdouchement/bookmarkd/internal/server/service"
	"github.com/mdouchement/bookmarkd/internal/server/session"
	"github.com/mdouchement/bookmarkd/internal/sferror"
)

// auth contains all authentication handlers.
type auth struct {
	users        *service.UserService
	sessions     session.Manager
	secureCookie bool
}

///// Register
////
//

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	params.UserAgent = c.Request().UserAgent()

	register, err := h.users.Register(params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, register)
}

///// Login
////
//

// Login authenticates a user and returns a JWT.
// The JWT is also set in an HttpOnly cookie.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	params.UserAgent = c.Request().UserAgent()

	if strings.TrimSpace(params.Username) == "" || params.Password == "" {
		return sferror.BadRequest("Username and password are required.")
	}

	login, err := h.users.Login(params)
	if err != nil {
		return err
	}

	c.SetCookie(session.Cookie(login.Token, h.sessions.TTL(), h.secureCookie))
	return c.JSON(http.StatusOK, login)
}

///// Logout
////
//

// Logout terminates the current session, if any, and clears the session cookie.
func (h *auth) Logout(c echo.Context) error {
	if err := h.users.Logout(session.Token(c.Request())); err != nil {
		return err
	}

	c.SetCookie(session.ClearCookie(h.secureCookie))
	return c.JSON(http.StatusOK, serializer.Message("Logout successful."))
}

///// Me
////
//

// Me returns the current_user.
func (h *auth) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, serializer.User(currentUser(c)))
}

///// Update Password
////
//

// UpdatePassword updates the password of the current_user.
// All the other sessions are revoked.
func (h *auth) UpdatePassword(c echo.Context) error {
	// Filter params
	var params service.UpdatePasswordParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	params.UserAgent = c.Request().UserAgent()

	if params.CurrentPassword == "" {
		return sferror.BadRequest("Your current password is required to change your password.")
	}
	if params.NewPassword == "" {
		return sferror.BadRequest("Your new password is required to change your password.")
	}

	login, err := h.users.UpdatePassword(currentUser(c), params)
	if err != nil {
		return err
	}

	c.SetCookie(session.Cookie(login.Token, h.sessions.TTL(), h.secureCookie))
	return c.JSON(http.StatusOK, login)
}
