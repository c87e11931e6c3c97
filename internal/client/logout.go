package client

import (
	"github.com/mdouchement/bookmarkd/pkg/libbm"
	"github.com/pkg/errors"
)

// Logout disconnects from a bookmarkd server.
func Logout() error {
	cfg, err := Load()
	if err != nil {
		return errors.Wrap(err, "could not load config")
	}

	client, err := libbm.NewDefaultClient(cfg.Endpoint)
	if err != nil {
		return errors.Wrap(err, "could not reach bookmarkd endpoint")
	}
	client.SetToken(cfg.Token)

	if err = client.Logout(); err != nil {
		return errors.Wrap(err, "could not logout")
	}

	return errors.Wrap(Remove(), "could not remove credential file")
}
