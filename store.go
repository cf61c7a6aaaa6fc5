package main

import (
	"context"
	"errors"
	"fmt"
)

// postStore is the tabular store holding the post queue, either the
// configured Google Sheet or the local SQLite database.
type postStore interface {
	// appendPost adds a new row and returns the assigned post number,
	// the highest existing number plus one, or 1 on an empty store.
	appendPost(ctx context.Context, p *post) (int, error)
	// scanPosts reads all rows in store order.
	scanPosts(ctx context.Context) ([]*post, error)
	// markPosted writes the completion timestamp into the post's row
	// and leaves every other cell untouched.
	markPosted(ctx context.Context, p *post, timestamp string) error
	// name identifies the backend on the dashboard.
	name() string
}

func (a *autoPost) initPostStore() {
	a.storeInit.Do(func() {
		type initFunc func() postStore
		for _, fc := range []initFunc{a.initSheetStore, a.initDbStore} {
			a.store = fc()
			if a.store != nil {
				break
			}
		}
	})
}

func (a *autoPost) postStorage() (postStore, error) {
	a.initPostStore()
	if a.store == nil {
		return nil, errors.New("no post store configured")
	}
	return a.store, nil
}

// storeError wraps a failed store call.
type storeError struct {
	op         string
	statusCode int
	err        error
}

func (e *storeError) Error() string {
	if e.statusCode != 0 {
		return fmt.Sprintf("store %s failed with status %d: %v", e.op, e.statusCode, e.err)
	}
	return fmt.Sprintf("store %s failed: %v", e.op, e.err)
}

func (e *storeError) Unwrap() error {
	return e.err
}

func asStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *storeError
	if errors.As(err, &se) {
		return se
	}
	return &storeError{op: op, err: err}
}
