package main

import (
	"hash"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const (
	dbname    = "bookmarkd.db"
	envPrefix = "BOOKMARKD_"
)

var defaults = map[string]any{
	"address":                 "localhost:5000",
	"database_path":           "",
	"no_registration":         false,
	"session.token_ttl":       "168h",
	"cookie.secure":           false,
	"log.level":               "info",
	"log.file":                "",
	"redis.url":               "",
	"redis.ttl":               "10m",
	"reorder.strict":          false,
	"import.limit":            "10M",
	"screenshot.base_url":     "http://localhost:5000",
	"screenshot.workers":      2,
	"screenshot.queue":        64,
	"screenshot.timeout":      "30s",
	"screenshot.apiflash_key": "",
}

// load reads the configuration from the defaults, the given YAML file and the environment.
// BOOKMARKD_SESSION__TOKEN_TTL overrides session.token_ttl.
func load(filename string) (*koanf.Koanf, error) {
	konf := koanf.New(".")
	if err := konf.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, "could not load defaults")
	}

	if filename != "" {
		if err := konf.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "could not load configuration file")
		}
	}

	err := konf.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load environment")
	}

	return konf, nil
}

func validate(konf *koanf.Koanf) error {
	if konf.String("secret_key") == "" {
		return errors.New("secret_key not found")
	}

	for _, key := range []string{"session.token_ttl", "redis.ttl", "screenshot.timeout"} {
		if _, err := time.ParseDuration(konf.String(key)); err != nil {
			return errors.Wrapf(err, "invalid %s", key)
		}
	}
	return nil
}

func dbnameWithPath(path string) string {
	if len(path) == 0 {
		return dbname
	}
	return filepath.Join(path, dbname)
}

func kdf(l int, k []byte) []byte {
	nhash := func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}

	payload := make([]byte, l)

	kdf := hkdf.New(nhash, k, nil, []byte("bookmarkd session token"))
	_, err := io.ReadFull(kdf, payload)
	if err != nil {
		panic(err)
	}

	return payload
}
