package libbm

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/pkg/errors"
)

type (
	// A Client defines all interactions that can be performed on a bookmarkd server.
	Client interface {
		// Register creates an account on the bookmarkd server.
		Register(username, email, password string) error
		// Login authenticates the Client against the bookmarkd server.
		Login(username, password string) error
		// Logout revokes the current token.
		Logout() error
		// Token returns the bearer token used for requests sent to the bookmarkd server.
		Token() string
		// SetToken sets the bearer token used for requests sent to the bookmarkd server.
		SetToken(token string)
		// Me returns the authenticated user.
		Me() (User, error)
		// Export returns the whole collection of the authenticated user.
		Export() ([]byte, error)
		// Import appends the given collection to the one of the authenticated user.
		Import(collection []byte) (ImportResult, error)
	}

	// A User is the public profile of an account.
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	// An ImportResult summarizes an import.
	ImportResult struct {
		Message           string `json:"message"`
		TabsImported      int    `json:"tabsImported"`
		BookmarksImported int    `json:"bookmarksImported"`
	}

	p      map[string]any
	client struct {
		http     *http.Client
		endpoint string
		token    string
	}
)

// NewDefaultClient returns a new Client with default HTTP client.
func NewDefaultClient(endpoint string) (Client, error) {
	return NewClient(http.DefaultClient, endpoint)
}

// NewClient returns a new Client.
func NewClient(c *http.Client, endpoint string) (Client, error) {
	_, err := url.Parse(endpoint)
	return &client{endpoint: endpoint, http: c}, errors.Wrap(err, "could not parse endpoint")
}

func (c *client) Token() string {
	return c.token
}

func (c *client) SetToken(token string) {
	c.token = token
}

func (c *client) Register(username, email, password string) error {
	body, err := json.Marshal(p{"username": username, "email": email, "password": password})
	if err != nil {
		return errors.Wrap(err, "could not serialize registration")
	}

	return c.do(http.MethodPost, "/api/auth/register", body, nil)
}

func (c *client) Login(username, password string) error {
	body, err := json.Marshal(p{"username": username, "password": password})
	if err != nil {
		return errors.Wrap(err, "could not serialize username & password")
	}

	var login struct {
		Token string `json:"token"`
	}
	if err = c.do(http.MethodPost, "/api/auth/login", body, &login); err != nil {
		return err
	}

	c.token = login.Token
	return nil
}

func (c *client) Logout() error {
	err := c.do(http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil {
		return err
	}

	c.token = ""
	return nil
}

func (c *client) Me() (User, error) {
	var user User
	err := c.do(http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

func (c *client) Export() ([]byte, error) {
	var collection json.RawMessage
	err := c.do(http.MethodGet, "/api/export", nil, &collection)
	return collection, err
}

func (c *client) Import(collection []byte) (ImportResult, error) {
	var result ImportResult
	err := c.do(http.MethodPost, "/api/import", collection, &result)
	return result, err
}

func (c *client) do(method, endpoint string, body []byte, v any) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return errors.Wrap(err, "could not parse endpoint")
	}
	u.Path = path.Join(u.Path, endpoint)

	//
	// Build request
	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, u.String(), payload)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}
	req.Close = true
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	if c.token != "" {
		req.Header.Add("Authorization", "Bearer "+c.token)
	}

	//
	// Perform request
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseError(res.Body, res.StatusCode)
	}

	//
	// Process response
	if v == nil {
		return nil
	}
	dec := json.NewDecoder(res.Body)
	return errors.Wrap(dec.Decode(v), "could not parse response")
}
