package main

import (
	"fmt"
	"log"

	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

func main() {
	c := &coral.Command{
		Use:   "rmuser",
		Short: "Remove a user and all its data from the database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
			//
			//
			fmt.Println("Opening", args[0])
			db, err := database.StormOpen(args[0])
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			// Fetch user by username or email
			user, err := db.FindUserByUsername(args[1])
			if db.IsNotFound(err) {
				user, err = db.FindUserByMail(args[1])
			}
			if err != nil {
				if db.IsNotFound(err) {
					fmt.Println("No account for this username or email")
					return nil
				}
				return errors.Wrap(err, "find user")
			}

			fmt.Println("User found:", user.ID)

			return db.Transaction(func(tx database.Tx) error {
				if err := tx.DeleteBookmarksByUserID(user.ID); err != nil {
					return err
				}
				fmt.Println("Bookmarks removed")

				if err := tx.DeleteTabsByUserID(user.ID); err != nil {
					return err
				}
				fmt.Println("Tabs removed")

				if err := tx.DeleteSessionsByUserID(user.ID); err != nil {
					return err
				}
				fmt.Println("Sessions removed")

				if err := tx.Delete(user); err != nil {
					return errors.Wrap(err, "delete user")
				}
				fmt.Println("User removed")
				return nil
			})
		},
	}

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
