package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/schollz/sqlite3dump"
	"golang.org/x/sync/singleflight"
)

type database struct {
	a *autoPost
	// Basic things
	db *sql.DB            // database
	em sync.Mutex         // command execution (insert, update, delete ...)
	sg singleflight.Group // singleflight group for prepared statements
	sc sync.Map           // prepared statement cache
	// Debug
	debug bool
}

func (a *autoPost) initDatabase(logging bool) (err error) {
	if a.db != nil {
		return nil
	}
	if logging {
		a.info("Initialize database")
	}
	// Open db
	db, err := a.openDatabase(a.cfg.Db.File)
	if err != nil {
		return err
	}
	a.db = db
	a.shutdown.Add(func() {
		_ = db.close()
		if logging {
			a.info("Closed database")
		}
	})
	// Dump database hourly
	if cfg := a.cfg.Db; cfg.DumpFile != "" {
		a.hourlyHooks = append(a.hourlyHooks, func() {
			db.dump(cfg.DumpFile)
		})
		db.dump(cfg.DumpFile)
	}
	return nil
}

func (a *autoPost) openDatabase(file string) (*database, error) {
	db, err := sql.Open("sqlite3", file+"?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=100")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// Migrate DB
	if err = migrateDb(db); err != nil {
		return nil, err
	}
	debug := false
	if c := a.cfg.Db; c != nil && c.Debug {
		debug = true
	}
	return &database{
		a:     a,
		db:    db,
		debug: debug,
	}, nil
}

func (db *database) dump(file string) {
	if db == nil || db.db == nil {
		return
	}
	// Lock execution
	db.em.Lock()
	defer db.em.Unlock()
	// Dump database
	f, err := os.Create(file)
	if err != nil {
		db.a.error("Error while dumping db", "err", err)
		return
	}
	if err = sqlite3dump.DumpDB(db.db, f); err != nil {
		db.a.error("Error while dumping db", "err", err)
	}
	_ = f.Close()
}

func (db *database) close() error {
	if db == nil || db.db == nil {
		return nil
	}
	db.vacuum()
	return db.db.Close()
}

func (db *database) vacuum() {
	_, _ = db.exec("vacuum")
}

func (db *database) prepare(query string) (*sql.Stmt, error) {
	if db == nil || db.db == nil {
		return nil, errors.New("database not initialized")
	}
	stmt, err, _ := db.sg.Do(query, func() (any, error) {
		// Look if statement already exists
		if st, ok := db.sc.Load(query); ok {
			return st, nil
		}
		// ... otherwise prepare ...
		st, err := db.db.Prepare(query)
		if err != nil {
			return nil, err
		}
		// ... and store it
		db.sc.Store(query, st)
		return st, nil
	})
	if err != nil {
		if db.debug {
			db.a.debug("Failed to prepare query", "query", query, "err", err)
		}
		return nil, err
	}
	return stmt.(*sql.Stmt), nil
}

func (db *database) exec(query string, args ...any) (sql.Result, error) {
	return db.execContext(context.Background(), query, args...)
}

func (db *database) execContext(c context.Context, query string, args ...any) (sql.Result, error) {
	stmt, err := db.prepare(query)
	if err != nil {
		return nil, err
	}
	// Lock execution
	db.em.Lock()
	defer db.em.Unlock()
	ctx := db.dbBefore(c, query, args...)
	defer db.dbAfter(ctx, query, args...)
	return stmt.ExecContext(ctx, args...)
}

func (db *database) query(query string, args ...any) (*sql.Rows, error) {
	return db.queryContext(context.Background(), query, args...)
}

func (db *database) queryContext(c context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := db.prepare(query)
	if err != nil {
		return nil, err
	}
	ctx := db.dbBefore(c, query, args...)
	defer db.dbAfter(ctx, query, args...)
	return stmt.QueryContext(ctx, args...)
}

func (db *database) queryRow(query string, args ...any) (*sql.Row, error) {
	return db.queryRowContext(context.Background(), query, args...)
}

func (db *database) queryRowContext(c context.Context, query string, args ...any) (*sql.Row, error) {
	stmt, err := db.prepare(query)
	if err != nil {
		return nil, err
	}
	ctx := db.dbBefore(c, query, args...)
	defer db.dbAfter(ctx, query, args...)
	return stmt.QueryRowContext(ctx, args...), nil
}
