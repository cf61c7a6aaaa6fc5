package main

import (
	"context"
	"database/sql"
	"errors"
)

// dbStore keeps the post queue in the local SQLite database. It mirrors
// the sheet's five columns, datetime cells stay strings in the accepted
// formats so both backends behave the same.
type dbStore struct {
	db *database
}

func (a *autoPost) initDbStore() postStore {
	if a.db == nil {
		return nil
	}
	return &dbStore{db: a.db}
}

func (s *dbStore) name() string {
	return "sqlite"
}

func (s *dbStore) appendPost(ctx context.Context, p *post) (int, error) {
	row, err := s.db.queryRowContext(ctx, "select coalesce(max(post_number), 0) + 1 from posts")
	if err != nil {
		return 0, asStoreError("append", err)
	}
	var num int
	if err = row.Scan(&num); err != nil {
		return 0, asStoreError("append", err)
	}
	_, err = s.db.execContext(
		ctx,
		"insert into posts (post_number, content, attachments, scheduled_time, posted_at) values (@num, @content, @attachments, @scheduled, '')",
		sql.Named("num", num),
		sql.Named("content", p.Content),
		sql.Named("attachments", joinAttachments(p.Attachments)),
		sql.Named("scheduled", p.Scheduled),
	)
	if err != nil {
		return 0, asStoreError("append", err)
	}
	p.Number = num
	return num, nil
}

func (s *dbStore) scanPosts(ctx context.Context) ([]*post, error) {
	rows, err := s.db.queryContext(ctx, "select post_number, content, attachments, scheduled_time, posted_at from posts order by post_number asc")
	if err != nil {
		return nil, asStoreError("scan", err)
	}
	defer rows.Close()
	var posts []*post
	for rows.Next() {
		p := &post{}
		var attachments string
		if err = rows.Scan(&p.Number, &p.Content, &attachments, &p.Scheduled, &p.PostedAt); err != nil {
			return nil, asStoreError("scan", err)
		}
		p.Attachments = splitAttachments(attachments)
		// Rows count from 2, like sheet rows below the header
		p.rowID = len(posts) + 2
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, asStoreError("scan", err)
	}
	return posts, nil
}

func (s *dbStore) markPosted(ctx context.Context, p *post, timestamp string) error {
	result, err := s.db.execContext(
		ctx,
		"update posts set posted_at = @posted where post_number = @num",
		sql.Named("posted", timestamp),
		sql.Named("num", p.Number),
	)
	if err != nil {
		return asStoreError("mark posted", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return asStoreError("mark posted", errors.New("post not found"))
	}
	return nil
}
