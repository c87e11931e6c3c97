package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/logger"
	"github.com/mdouchement/bookmarkd/internal/screenshot"
	"github.com/mdouchement/bookmarkd/internal/server"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "bookmarkd",
		Short:   "Personal bookmarks manager server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	for _, cmd := range []*coral.Command{initCmd, reindexCmd, serverCmd, configCmd} {
		cmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
		c.AddCommand(cmd)
	}

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			return database.StormInit(dbnameWithPath(konf.String("database_path")))
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			return database.StormReIndex(dbnameWithPath(konf.String("database_path")))
		},
	}

	//
	configCmd = &coral.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			settings := konf.All()
			for _, key := range []string{"secret_key", "screenshot.apiflash_key", "redis.url"} {
				if konf.String(key) != "" {
					settings[key] = "[redacted]"
				}
			}

			litter.Dump(settings)
			return nil
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}
			if err = validate(konf); err != nil {
				return err
			}

			l, err := logger.New(konf.String("log.level"), konf.String("log.file"))
			if err != nil {
				return err
			}

			db, err := database.StormOpen(dbnameWithPath(konf.String("database_path")))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			var rdb *redis.Client
			if url := konf.String("redis.url"); url != "" {
				options, err := redis.ParseURL(url)
				if err != nil {
					return errors.Wrap(err, "could not parse redis url")
				}
				rdb = redis.NewClient(options)
				defer rdb.Close()
			}

			capturer := screenshot.NewClient(screenshot.Config{
				BaseURL:   konf.String("screenshot.base_url"),
				AccessKey: konf.String("screenshot.apiflash_key"),
				Timeout:   konf.Duration("screenshot.timeout"),
			}, l.WithField("component", "screenshot"))
			dispatcher := screenshot.NewDispatcher(
				capturer,
				db,
				l.WithField("component", "screenshot"),
				konf.Int("screenshot.workers"),
				konf.Int("screenshot.queue"),
				konf.Duration("screenshot.timeout"),
			)
			defer dispatcher.Close()

			engine := server.EchoEngine(server.IOC{
				Version:        version,
				Database:       db,
				Logger:         l,
				NoRegistration: konf.Bool("no_registration"),
				StrictReorder:  konf.Bool("reorder.strict"),
				SigningKey:     kdf(32, konf.MustBytes("secret_key")),
				TokenTTL:       konf.Duration("session.token_ttl"),
				SecureCookie:   konf.Bool("cookie.secure"),
				Redis:          rdb,
				CacheTTL:       konf.Duration("redis.ttl"),
				Screenshots:    dispatcher,
				ImportLimit:    konf.String("import.limit"),
			})
			engine.HideBanner = true
			server.PrintRoutes(engine)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				err := serve(engine, konf.String("address"), l)
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return errors.Wrap(err, "could not run server")
			})
			g.Go(func() error {
				<-ctx.Done()
				l.Info("Shutting down server")

				shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return engine.Shutdown(shutdown)
			})

			return g.Wait()
		},
	}
)

func serve(engine *echo.Echo, address string, l logrus.FieldLogger) error {
	l.Infof("Server listening on %s", address)

	parts := strings.Split(address, ":")
	if len(parts) != 2 || parts[0] != "unix" {
		return engine.Start(address)
	}

	socketFile := parts[1]
	if _, err := os.Stat(socketFile); err == nil {
		l.Infof("Removing existing %s", socketFile)
		os.Remove(socketFile)
	}
	defer os.Remove(socketFile)

	listener, err := net.Listen(parts[0], socketFile)
	if err != nil {
		return err
	}
	return engine.Server.Serve(listener)
}
