package client

import (
	"fmt"

	"github.com/chzyer/readline"
	"github.com/mdouchement/bookmarkd/pkg/libbm"
	"github.com/pkg/errors"
)

// Login connects to a bookmarkd server.
func Login() error {
	cfg := Config{}

	endpoint, err := readline.Line("Endpoint: ")
	if err != nil {
		return errors.Wrap(err, "could not read endpoint from stdin")
	}
	cfg.Endpoint = endpoint

	client, err := libbm.NewDefaultClient(cfg.Endpoint)
	if err != nil {
		return errors.Wrap(err, "could not reach given endpoint")
	}

	cfg.Username, err = readline.Line("Username: ")
	if err != nil {
		return errors.Wrap(err, "could not read username from stdin")
	}

	password, err := readline.Password("Password: ")
	if err != nil {
		return errors.Wrap(err, "could not read password from stdin")
	}

	err = client.Login(cfg.Username, string(password))
	if err != nil {
		return errors.Wrap(err, "could not login")
	}
	cfg.Token = client.Token()

	fmt.Println("Logged in as", cfg.Username)
	return Save(cfg)
}

// connect returns a client authenticated with the stored credentials.
func connect(cfg Config) (libbm.Client, error) {
	client, err := libbm.NewDefaultClient(cfg.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not reach bookmarkd endpoint")
	}
	client.SetToken(cfg.Token)

	if _, err = client.Me(); err != nil {
		if libbm.IsUnauthorized(err) {
			return nil, errors.New("session expired, please login again")
		}
		return nil, errors.Wrap(err, "could not check session")
	}

	return client, nil
}
