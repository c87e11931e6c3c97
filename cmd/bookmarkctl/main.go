package main

import (
	"fmt"
	"os"

	"github.com/mdouchement/bookmarkd/internal/client"
	"github.com/muesli/coral"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	c := &coral.Command{
		Use:     "bookmarkctl",
		Short:   "bookmarkd client",
		Version: fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:    coral.NoArgs,
	}
	c.AddCommand(loginCmd)
	c.AddCommand(logoutCmd)
	c.AddCommand(backupCmd)
	c.AddCommand(restoreCmd)

	if err := c.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	loginCmd = &coral.Command{
		Use:   "login",
		Short: "Login to the bookmarkd server",
		Args:  coral.NoArgs,
		RunE: func(_ *coral.Command, args []string) error {
			return client.Login()
		},
	}

	logoutCmd = &coral.Command{
		Use:   "logout",
		Short: "Logout from the bookmarkd server",
		Args:  coral.NoArgs,
		RunE: func(_ *coral.Command, args []string) error {
			return client.Logout()
		},
	}

	backupCmd = &coral.Command{
		Use:   "backup",
		Short: "Backup your bookmarks",
		Args:  coral.NoArgs,
		RunE: func(_ *coral.Command, args []string) error {
			return client.Backup()
		},
	}

	restoreCmd = &coral.Command{
		Use:   "restore FILENAME",
		Short: "Restore a backup of your bookmarks",
		Args:  coral.ExactArgs(1),
		RunE: func(_ *coral.Command, args []string) error {
			return client.Restore(args[0])
		},
	}
)
