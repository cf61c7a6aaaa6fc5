package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *autoPost) setInMemoryDatabase() {
	a.db, _ = a.openDatabase(":memory:")
}

func Test_database(t *testing.T) {
	t.Run("Basic Database Test", func(t *testing.T) {
		app := &autoPost{
			cfg: createDefaultTestConfig(t),
		}

		db, err := app.openDatabase(":memory:")
		require.NoError(t, err)

		// Migrations created the tables
		row, err := db.queryRow("select count(*) from posts")
		require.NoError(t, err)
		var postCount int
		require.NoError(t, row.Scan(&postCount))
		assert.Equal(t, 0, postCount)

		_, err = db.exec("insert into notifications (time, text) values (@time, @text)", sql.Named("time", 1), sql.Named("text", "Test"))
		require.NoError(t, err)

		rows, err := db.query("select count(*), text from notifications")
		require.NoError(t, err)
		require.True(t, rows.Next())
		var count int
		var text string
		require.NoError(t, rows.Scan(&count, &text))
		_ = rows.Close()
		assert.Equal(t, 1, count)
		assert.Equal(t, "Test", text)

		require.NoError(t, db.close())
	})

	t.Run("Dump", func(t *testing.T) {
		app := &autoPost{
			cfg: createDefaultTestConfig(t),
		}
		require.NoError(t, app.initDatabase(false))
		defer app.db.close()

		dumpFile := filepath.Join(t.TempDir(), "dump.sql")
		app.db.dump(dumpFile)

		dump, err := os.ReadFile(dumpFile)
		require.NoError(t, err)
		assert.Contains(t, string(dump), "CREATE TABLE posts")
	})
}

func Test_parallelDatabase(t *testing.T) {
	t.Run("Test parallel db access", func(t *testing.T) {
		// Test that parallel database access works without problems

		t.Parallel()

		app := &autoPost{
			cfg: createDefaultTestConfig(t),
		}
		app.setInMemoryDatabase()

		t.Run("1", func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				_, e := app.db.exec("insert into notifications (time, text) values (1, 'Test')")
				require.NoError(t, e)
			}
		})

		t.Run("2", func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				_, e := app.db.exec("insert into notifications (time, text) values (2, 'Test')")
				require.NoError(t, e)
			}
		})

		t.Run("3", func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				_, e := app.db.queryRow("select count(*) from notifications")
				require.NoError(t, e)
			}
		})
	})
}
