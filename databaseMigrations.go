package main

import (
	"database/sql"

	"github.com/lopezator/migrator"
)

func migrateDb(db *sql.DB) error {
	m, err := migrator.New(
		migrator.Migrations(
			&migrator.Migration{
				Name: "00001",
				Func: func(tx *sql.Tx) error {
					_, err := tx.Exec(`
					CREATE TABLE posts (post_number integer primary key, content text not null, attachments text not null default '', scheduled_time text not null default '', posted_at text not null default '');
					CREATE TABLE notifications (id integer primary key autoincrement, time integer not null, text text not null);
					`)
					return err
				},
			},
		),
	)
	if err != nil {
		return err
	}
	return m.Migrate(db)
}
