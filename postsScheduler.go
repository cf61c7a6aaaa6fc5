package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.autopost.app/app/pkgs/builderpool"
)

type schedulerState string

const (
	schedulerStopped schedulerState = "stopped"
	schedulerIdle    schedulerState = "idle"
	schedulerTicking schedulerState = "ticking"
)

const schedulerCallTimeout = 30 * time.Second

type schedulerStatus struct {
	State    schedulerState
	Interval time.Duration
	LastTick time.Time
	LastErr  error
}

func (a *autoPost) schedulerInterval() time.Duration {
	return time.Duration(a.cfg.Scheduler.Interval) * time.Second
}

// startPostsScheduler starts the polling loop. The first check runs
// right away, then one check per interval. Starting a running scheduler
// does nothing.
func (a *autoPost) startPostsScheduler() {
	a.schedulerMu.Lock()
	if a.schedulerState != "" && a.schedulerState != schedulerStopped {
		a.schedulerMu.Unlock()
		return
	}
	stop := make(chan struct{})
	stopped := make(chan struct{})
	trigger := make(chan struct{}, 1)
	a.schedulerStop = stop
	a.schedulerStopped = stopped
	a.schedulerTrigger = trigger
	a.schedulerState = schedulerIdle
	a.schedulerMu.Unlock()

	interval := a.schedulerInterval()
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		a.runScheduledCheck()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				a.runScheduledCheck()
			case <-trigger:
				a.runScheduledCheck()
			}
		}
	}()

	a.shutdown.Add(a.stopPostsScheduler)
	a.info("Posts scheduler started", "interval", interval.String())
	a.sendNotification("Posts scheduler started")
}

// stopPostsScheduler signals the loop to stop and waits until a check
// that is currently running has finished. Stopping a stopped scheduler
// does nothing.
func (a *autoPost) stopPostsScheduler() {
	a.schedulerMu.Lock()
	if a.schedulerState == "" || a.schedulerState == schedulerStopped {
		a.schedulerMu.Unlock()
		return
	}
	a.schedulerState = schedulerStopped
	stop := a.schedulerStop
	stopped := a.schedulerStopped
	a.schedulerMu.Unlock()

	close(stop)
	<-stopped
	a.info("Posts scheduler stopped")
	a.sendNotification("Posts scheduler stopped")
}

// triggerPostsScheduler requests a check outside the regular interval.
// It reports false when the scheduler is not running.
func (a *autoPost) triggerPostsScheduler() bool {
	a.schedulerMu.Lock()
	defer a.schedulerMu.Unlock()
	if a.schedulerState == "" || a.schedulerState == schedulerStopped {
		return false
	}
	select {
	case a.schedulerTrigger <- struct{}{}:
	default:
		// A trigger is already queued
	}
	return true
}

func (a *autoPost) schedulerSnapshot() *schedulerStatus {
	a.schedulerMu.Lock()
	defer a.schedulerMu.Unlock()
	state := a.schedulerState
	if state == "" {
		state = schedulerStopped
	}
	return &schedulerStatus{
		State:    state,
		Interval: a.schedulerInterval(),
		LastTick: a.schedulerLastTick,
		LastErr:  a.schedulerLastErr,
	}
}

func (a *autoPost) runScheduledCheck() {
	a.schedulerMu.Lock()
	if a.schedulerState == "" || a.schedulerState == schedulerStopped {
		a.schedulerMu.Unlock()
		return
	}
	a.schedulerState = schedulerTicking
	a.schedulerMu.Unlock()

	err := a.checkScheduledPosts(context.Background())

	a.schedulerMu.Lock()
	a.schedulerLastTick = time.Now()
	a.schedulerLastErr = err
	if a.schedulerState == schedulerTicking {
		a.schedulerState = schedulerIdle
	}
	a.schedulerMu.Unlock()
}

// checkScheduledPosts runs one check: snapshot the store, publish every
// due post in store order and mark each one right away. A failure never
// reaches past the record it belongs to, failed records stay pending
// and are picked up again on the next check.
func (a *autoPost) checkScheduledPosts(ctx context.Context) error {
	store, err := a.postStorage()
	if err != nil {
		return err
	}
	scanCtx, cancel := context.WithTimeout(ctx, schedulerCallTimeout)
	defer cancel()
	posts, err := store.scanPosts(scanCtx)
	if err != nil {
		a.error("Failed to scan posts, skipping this check", "err", err)
		return err
	}
	due := duePosts(posts, time.Now(), a.loc)
	a.debug("Checked scheduled posts", "total", len(posts), "due", len(due))
	for _, p := range due {
		a.publishDuePost(ctx, store, p)
	}
	return nil
}

func (a *autoPost) publishDuePost(ctx context.Context, store postStore, p *post) {
	if strings.TrimSpace(p.Content) == "" {
		a.warn("Skipping scheduled post without content", "post", p.Number)
		return
	}
	// One id per publish attempt, to find both log lines again later
	attempt := uuid.NewString()

	publishCtx, cancel := context.WithTimeout(ctx, schedulerCallTimeout)
	postId, err := a.publishPost(publishCtx, p)
	cancel()
	if err != nil {
		a.error("Failed to publish scheduled post", "post", p.Number, "attempt", attempt, "err", err)
		return
	}

	postedAt := formatScheduleTime(time.Now(), a.loc)
	markCtx, cancel := context.WithTimeout(ctx, schedulerCallTimeout)
	err = store.markPosted(markCtx, p, postedAt)
	cancel()
	if err != nil {
		// The remote post exists, but the store still says pending, so
		// the next check would publish it again
		a.error("Published post but failed to mark it, duplicate ahead", "post", p.Number, "linkedinPost", postId, "attempt", attempt, "err", err)
		message := builderpool.Get()
		fmt.Fprintf(message, "Post %d was published to LinkedIn (%s), but marking it as posted failed: %v. ", p.Number, postId, err)
		fmt.Fprintf(message, "Fix the row manually before the next check, otherwise it will be published again. Attempt id: %s", attempt)
		a.sendNotification(message.String())
		builderpool.Put(message)
		return
	}

	p.PostedAt = postedAt
	a.info("Published scheduled post", "post", p.Number, "linkedinPost", postId, "attempt", attempt)
	a.postPublishHooks(p, postId)
}
