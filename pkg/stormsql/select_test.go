package stormsql_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/mdouchement/bookmarkd/pkg/stormsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID        int `storm:"id,increment"`
	Name      string
	Position  int
	CreatedAt time.Time
}

func TestParseSelect(t *testing.T) {
	sc, err := stormsql.ParseSelect(" SELECT count(*) FROM bookmarks WHERE TabID = 'abc' AND CreatedAt > '2024-02-16 20:52:55' LIMIT 2, 5; ")
	require.NoError(t, err)
	assert.True(t, sc.Count)
	assert.Equal(t, "bookmarks", sc.Tablename)
	assert.Equal(t, 2, sc.Skip)
	assert.Equal(t, 5, sc.Limit)

	sc, err = stormsql.ParseSelect("SELECT Name, Position FROM tabs ORDER BY Position DESC")
	require.NoError(t, err)
	assert.False(t, sc.Count)
	assert.Equal(t, []string{"Name", "Position"}, sc.SelectedFields)
	assert.Equal(t, []string{"Position"}, sc.OrderBy)
	assert.True(t, sc.OrderByReversed)
}

func TestParseSelect_Errors(t *testing.T) {
	for _, sql := range []string{
		"DELETE FROM users",
		"SELECT * FROM",
		"SELECT sum(Position) FROM tabs",
		"SELECT * FROM tabs WHERE Position BETWEEN 1 AND 2",
		"SELECT * FROM tabs WHERE 1 = Position",
		"SELECT * FROM tabs LIMIT 'a'",
	} {
		_, err := stormsql.ParseSelect(sql)
		assert.Error(t, err, sql)
	}
}

func TestMatcher(t *testing.T) {
	db, err := storm.Open(filepath.Join(t.TempDir(), "stormsql.db"))
	require.NoError(t, err)
	defer db.Close()

	for i, name := range []string{"Général", "Dev", "News", "Devops"} {
		require.NoError(t, db.Save(&record{
			Name:      name,
			Position:  i,
			CreatedAt: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
		}))
	}

	tests := []struct {
		where string
		names []string
	}{
		{where: "Position >= 2", names: []string{"News", "Devops"}},
		{where: "Position != 0 AND Position < 3", names: []string{"Dev", "News"}},
		{where: "Name = 'Dev' OR Name = 'News'", names: []string{"Dev", "News"}},
		{where: "Name IN ('Général', 'Devops')", names: []string{"Général", "Devops"}},
		{where: "Name LIKE '^Dev'", names: []string{"Dev", "Devops"}},
		{where: "CreatedAt > '2024-01-02'", names: []string{"News", "Devops"}},
		{where: "(Position = 1 OR Position = 2) AND Name != 'News'", names: []string{"Dev"}},
	}

	for _, tt := range tests {
		sc, err := stormsql.ParseSelect("SELECT * FROM records WHERE " + tt.where + " ORDER BY Position")
		require.NoError(t, err, tt.where)

		var records []record
		query := db.Select(sc.Matcher).OrderBy(sc.OrderBy...)
		require.NoError(t, query.Find(&records), tt.where)

		var names []string
		for _, r := range records {
			names = append(names, r.Name)
		}
		assert.Equal(t, tt.names, names, tt.where)
	}
}
