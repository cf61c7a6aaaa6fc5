package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchedulerApp(t *testing.T) (*autoPost, *fakeHttpClient) {
	app := &autoPost{
		cfg: createDefaultTestConfig(t),
	}
	app.cfg.LinkedIn = &configLinkedIn{
		AccessToken: "token123",
		PersonURN:   "urn:li:person:abc",
	}
	require.NoError(t, app.initConfig())
	require.NoError(t, app.initDatabase(false))
	fc := newFakeHttpClient()
	app.httpClient = fc.Client
	return app, fc
}

// countingStore counts scans, publish checks poll it.
type countingStore struct {
	postStore
	mu        sync.Mutex
	scanCount int
}

func (s *countingStore) scanPosts(ctx context.Context) ([]*post, error) {
	s.mu.Lock()
	s.scanCount++
	s.mu.Unlock()
	return s.postStore.scanPosts(ctx)
}

func (s *countingStore) scans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanCount
}

// failingMarkStore publishes fine but cannot mark anything posted.
type failingMarkStore struct {
	postStore
}

func (s *failingMarkStore) markPosted(context.Context, *post, string) error {
	return errors.New("update failed")
}

func Test_checkScheduledPosts(t *testing.T) {
	app, fc := newTestSchedulerApp(t)

	var published int32
	fc.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/ugcPosts"))
		atomic.AddInt32(&published, 1)
		rw.Header().Set(restliIdHeader, "urn:li:share:123")
		rw.WriteHeader(http.StatusCreated)
	}))

	ctx := context.Background()
	store, err := app.postStorage()
	require.NoError(t, err)

	_, err = store.appendPost(ctx, &post{Content: "Due post", Scheduled: "2024-05-01 10:00:00"})
	require.NoError(t, err)
	_, err = store.appendPost(ctx, &post{Content: "Future post", Scheduled: "2099-01-01 10:00:00"})
	require.NoError(t, err)
	_, err = store.appendPost(ctx, &post{Content: "No schedule"})
	require.NoError(t, err)

	require.NoError(t, app.checkScheduledPosts(ctx))

	assert.EqualValues(t, 1, atomic.LoadInt32(&published))

	posts, err := store.scanPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.NotEmpty(t, posts[0].PostedAt)
	_, ok := parseScheduleTime(posts[0].PostedAt, app.loc)
	assert.True(t, ok, "completion timestamp must be parseable")
	assert.Empty(t, posts[1].PostedAt)
	assert.Empty(t, posts[2].PostedAt)

	// A second check must not publish again
	require.NoError(t, app.checkScheduledPosts(ctx))
	assert.EqualValues(t, 1, atomic.LoadInt32(&published))
}

func Test_checkScheduledPosts_publishFailure(t *testing.T) {
	app, fc := newTestSchedulerApp(t)

	var failing atomic.Bool
	failing.Store(true)
	var published int32
	fc.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}
		atomic.AddInt32(&published, 1)
		rw.Header().Set(restliIdHeader, "urn:li:share:123")
		rw.WriteHeader(http.StatusCreated)
	}))

	ctx := context.Background()
	store, err := app.postStorage()
	require.NoError(t, err)
	_, err = store.appendPost(ctx, &post{Content: "Due post", Scheduled: "2024-05-01 10:00:00"})
	require.NoError(t, err)

	// The check itself succeeds, the failed record just stays pending
	require.NoError(t, app.checkScheduledPosts(ctx))

	posts, err := store.scanPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts[0].PostedAt)

	// A pure publish failure does not produce a notification
	count, err := app.db.countNotifications(&notificationsRequestConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The next check retries and succeeds
	failing.Store(false)
	require.NoError(t, app.checkScheduledPosts(ctx))

	posts, err = store.scanPosts(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, posts[0].PostedAt)
	assert.EqualValues(t, 1, atomic.LoadInt32(&published))
}

func Test_checkScheduledPosts_blankContent(t *testing.T) {
	app, fc := newTestSchedulerApp(t)
	fc.setFakeResponse(http.StatusCreated, "")

	ctx := context.Background()
	store, err := app.postStorage()
	require.NoError(t, err)
	_, err = store.appendPost(ctx, &post{Content: "   ", Scheduled: "2024-05-01 10:00:00"})
	require.NoError(t, err)

	require.NoError(t, app.checkScheduledPosts(ctx))

	// Nothing is published, the record stays pending
	assert.Nil(t, fc.req)
	posts, err := store.scanPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts[0].PostedAt)
}

func Test_checkScheduledPosts_markFailure(t *testing.T) {
	app, fc := newTestSchedulerApp(t)

	var published int32
	fc.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&published, 1)
		rw.Header().Set(restliIdHeader, "urn:li:share:456")
		rw.WriteHeader(http.StatusCreated)
	}))

	ctx := context.Background()
	store, err := app.postStorage()
	require.NoError(t, err)
	_, err = store.appendPost(ctx, &post{Content: "Due post", Scheduled: "2024-05-01 10:00:00"})
	require.NoError(t, err)

	app.store = &failingMarkStore{postStore: app.store}

	require.NoError(t, app.checkScheduledPosts(ctx))

	// Published exactly once, but the record still looks pending
	assert.EqualValues(t, 1, atomic.LoadInt32(&published))
	posts, err := store.scanPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts[0].PostedAt)

	// The failure left a durable notification with the LinkedIn id
	notifications, err := app.db.getNotifications(&notificationsRequestConfig{})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Text, "Post 1 was published to LinkedIn")
	assert.Contains(t, notifications[0].Text, "urn:li:share:456")
	assert.Contains(t, notifications[0].Text, "Attempt id")
}

func Test_postsScheduler_stateMachine(t *testing.T) {
	app, fc := newTestSchedulerApp(t)
	fc.setFakeResponse(http.StatusCreated, "")

	app.initPostStore()
	cs := &countingStore{postStore: app.store}
	app.store = cs

	// Not started yet
	assert.Equal(t, schedulerStopped, app.schedulerSnapshot().State)
	assert.False(t, app.triggerPostsScheduler())

	// The first check runs right after the start
	app.startPostsScheduler()
	assert.Eventually(t, func() bool { return cs.scans() >= 1 }, time.Second, 10*time.Millisecond)

	snapshot := app.schedulerSnapshot()
	assert.Contains(t, []schedulerState{schedulerIdle, schedulerTicking}, snapshot.State)
	assert.Equal(t, 300*time.Second, snapshot.Interval)

	// Manual triggers cause a check between ticks
	require.True(t, app.triggerPostsScheduler())
	assert.Eventually(t, func() bool { return cs.scans() >= 2 }, time.Second, 10*time.Millisecond)

	// Starting again changes nothing
	app.startPostsScheduler()

	app.stopPostsScheduler()
	assert.Equal(t, schedulerStopped, app.schedulerSnapshot().State)
	assert.False(t, app.triggerPostsScheduler())

	// Stopping again changes nothing either
	app.stopPostsScheduler()

	// No more checks after the stop
	scans := cs.scans()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, scans, cs.scans())

	assert.NotZero(t, app.schedulerSnapshot().LastTick)
}
