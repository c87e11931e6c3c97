package client

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Backup fetchs the whole collection and store it in the current directory.
func Backup() error {
	cfg, err := Load()
	if err != nil {
		return errors.Wrap(err, "could not load config")
	}

	client, err := connect(cfg)
	if err != nil {
		return err
	}

	collection, err := client.Export()
	if err != nil {
		return errors.Wrap(err, "could not export bookmarks")
	}

	filename := fmt.Sprintf("bookmarks_%s.json", time.Now().Format("20060102150405"))
	if err = os.WriteFile(filename, collection, 0600); err != nil {
		return errors.Wrap(err, "could not store backup")
	}

	tabs := gjson.GetBytes(collection, "tabs.#").Int()
	fmt.Printf("%d tabs saved in %s\n", tabs, filename)
	return nil
}

// Restore appends the collection of the given backup file to the account.
func Restore(filename string) error {
	collection, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "could not read backup")
	}
	if err = validate(collection); err != nil {
		return err
	}

	cfg, err := Load()
	if err != nil {
		return errors.Wrap(err, "could not load config")
	}

	client, err := connect(cfg)
	if err != nil {
		return err
	}

	result, err := client.Import(collection)
	if err != nil {
		return errors.Wrap(err, "could not import bookmarks")
	}

	fmt.Printf("%d tabs and %d bookmarks restored\n", result.TabsImported, result.BookmarksImported)
	return nil
}

// validate rejects files that are not an export before anything is sent.
func validate(collection []byte) error {
	if !gjson.ValidBytes(collection) {
		return errors.New("backup is not a valid JSON document")
	}
	if !gjson.GetBytes(collection, "version").Exists() || !gjson.GetBytes(collection, "tabs").IsArray() {
		return errors.New("backup is not a bookmarks export")
	}
	return nil
}
