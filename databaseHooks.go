package main

import (
	"context"
	"time"
)

const dbHookBegin contextKey = "begin"

func (db *database) dbBefore(ctx context.Context, _ string, _ ...any) context.Context {
	if !db.debug {
		return ctx
	}
	return context.WithValue(ctx, dbHookBegin, time.Now())
}

func (db *database) dbAfter(ctx context.Context, query string, args ...any) {
	if !db.debug {
		return
	}
	begin, ok := ctx.Value(dbHookBegin).(time.Time)
	if !ok {
		return
	}
	db.a.debug("Executed database query", "query", query, "args", args, "duration", time.Since(begin).String())
}
