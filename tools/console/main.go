package main

import (
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/bytedance/sonic"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/pkg/stormsql"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

// go run tools/console/main.go bookmarkd.db " SELECT count(*) FROM bookmarks WHERE UserID = 'f2a98ab0-2c40-42b4-be08-da3b771be935' AND CreatedAt > '2024-02-16 20:52:55';  "

func main() {
	c := &coral.Command{
		Use:   "console",
		Short: "SQL console for bookmarkd database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
			//
			//
			sc, err := stormsql.ParseSelect(args[1])
			if err != nil {
				return err
			}

			//
			//
			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], database.StormCodec)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			//
			// Prepare request
			//

			query := db.Select(sc.Matcher)
			if sc.Skip > 0 {
				query.Skip(sc.Skip)
			}
			if sc.Limit > 0 {
				query.Limit(sc.Limit)
			}
			if len(sc.OrderBy) > 0 {
				query.OrderBy(sc.OrderBy...)
				if sc.OrderByReversed {
					query.Reverse()
				}
			}

			// Execute

			if sc.Count {
				return count(sc, query)
			}

			return list(sc, query)
		},
	}

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func records(tablename string, many bool) (any, error) {
	switch tablename {
	case "users":
		if many {
			return &[]*model.User{}, nil
		}
		return &model.User{}, nil
	case "sessions":
		if many {
			return &[]*model.Session{}, nil
		}
		return &model.Session{}, nil
	case "tabs":
		if many {
			return &[]*model.Tab{}, nil
		}
		return &model.Tab{}, nil
	case "bookmarks":
		if many {
			return &[]*model.Bookmark{}, nil
		}
		return &model.Bookmark{}, nil
	}

	return nil, errors.Errorf("unknown tablename: %s", tablename)
}

func count(sc *stormsql.SelectClause, query storm.Query) error {
	record, err := records(sc.Tablename, false)
	if err != nil {
		return err
	}

	n, err := query.Count(record)
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	fmt.Println("Count:", n)

	return nil
}

func list(sc *stormsql.SelectClause, query storm.Query) error {
	rows, err := records(sc.Tablename, true)
	if err != nil {
		return err
	}

	err = query.Find(rows)
	if err == storm.ErrNotFound {
		fmt.Println("[]")
		return nil
	}

	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	return jsondump(rows)
}

func jsondump(v any) error {
	d, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not dump records")
	}
	fmt.Println(string(d))
	return nil
}
