package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.autopost.app/app/pkgs/contenttype"
)

type apiPost struct {
	Number      int        `json:"number"`
	Content     string     `json:"content"`
	Attachments []string   `json:"attachments,omitempty"`
	Scheduled   string     `json:"scheduled,omitempty"`
	PostedAt    string     `json:"postedAt,omitempty"`
	Status      postStatus `json:"status"`
}

func apiPostFromPost(p *post) *apiPost {
	return &apiPost{
		Number:      p.Number,
		Content:     p.Content,
		Attachments: p.Attachments,
		Scheduled:   p.Scheduled,
		PostedAt:    p.PostedAt,
		Status:      p.status(),
	}
}

func (a *autoPost) serveGetPosts(w http.ResponseWriter, r *http.Request) {
	store, err := a.postStorage()
	if err != nil {
		a.serveError(w, r, err.Error(), http.StatusInternalServerError)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), schedulerCallTimeout)
	defer cancel()
	posts, err := store.scanPosts(ctx)
	if err != nil {
		a.error("Failed to scan posts", "err", err)
		a.serveError(w, r, "Failed to read posts", http.StatusInternalServerError)
		return
	}
	a.serveJSON(w, r, lo.Map(posts, func(p *post, _ int) *apiPost {
		return apiPostFromPost(p)
	}))
}

func (a *autoPost) serveCreatePost(w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = r.Body.Close()
	}()
	req := struct {
		Content     string   `json:"content"`
		Attachments []string `json:"attachments"`
		Scheduled   string   `json:"scheduled"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.serveError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		a.serveError(w, r, "Content is required", http.StatusBadRequest)
		return
	}
	if req.Scheduled != "" {
		if _, ok := parseScheduleTime(req.Scheduled, a.loc); !ok {
			a.serveError(w, r, "Unknown scheduled time format", http.StatusBadRequest)
			return
		}
	}
	store, err := a.postStorage()
	if err != nil {
		a.serveError(w, r, err.Error(), http.StatusInternalServerError)
		return
	}
	p := &post{
		Content:     req.Content,
		Attachments: req.Attachments,
		Scheduled:   req.Scheduled,
	}
	ctx, cancel := context.WithTimeout(r.Context(), schedulerCallTimeout)
	defer cancel()
	if p.Number, err = store.appendPost(ctx, p); err != nil {
		a.error("Failed to append post", "err", err)
		a.serveError(w, r, "Failed to save post", http.StatusInternalServerError)
		return
	}
	a.info("Appended post", "number", p.Number, "store", store.name())
	w.Header().Set(contentType, contenttype.JSONUTF8)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(apiPostFromPost(p))
}

type apiSchedulerStatus struct {
	State     schedulerState `json:"state"`
	Running   bool           `json:"running"`
	Interval  int            `json:"interval"`
	LastTick  string         `json:"lastTick,omitempty"`
	LastError string         `json:"lastError,omitempty"`
}

func (a *autoPost) apiSchedulerStatus() *apiSchedulerStatus {
	status := a.schedulerSnapshot()
	res := &apiSchedulerStatus{
		State:    status.State,
		Running:  status.State != schedulerStopped,
		Interval: int(status.Interval / time.Second),
	}
	if !status.LastTick.IsZero() {
		res.LastTick = status.LastTick.Format(time.RFC3339)
	}
	if status.LastErr != nil {
		res.LastError = status.LastErr.Error()
	}
	return res
}

func (a *autoPost) serveSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	a.serveJSON(w, r, a.apiSchedulerStatus())
}

func (a *autoPost) serveSchedulerStart(w http.ResponseWriter, r *http.Request) {
	a.startPostsScheduler()
	a.serveJSON(w, r, a.apiSchedulerStatus())
}

func (a *autoPost) serveSchedulerStop(w http.ResponseWriter, r *http.Request) {
	a.stopPostsScheduler()
	a.serveJSON(w, r, a.apiSchedulerStatus())
}

func (a *autoPost) serveSchedulerTrigger(w http.ResponseWriter, r *http.Request) {
	if !a.triggerPostsScheduler() {
		a.serveError(w, r, "Scheduler is not running", http.StatusConflict)
		return
	}
	a.serveJSON(w, r, a.apiSchedulerStatus())
}

type apiNotification struct {
	ID   int    `json:"id"`
	Time string `json:"time"`
	Text string `json:"text"`
}

func (a *autoPost) serveNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	notifications, err := a.db.getNotifications(&notificationsRequestConfig{
		limit:  cast.ToInt(query.Get("limit")),
		offset: cast.ToInt(query.Get("offset")),
	})
	if err != nil {
		a.error("Failed to get notifications", "err", err)
		a.serveError(w, r, "Failed to read notifications", http.StatusInternalServerError)
		return
	}
	a.serveJSON(w, r, lo.Map(notifications, func(n *notification, _ int) *apiNotification {
		return &apiNotification{
			ID:   n.ID,
			Time: time.Unix(n.Time, 0).In(a.loc).Format(time.RFC3339),
			Text: n.Text,
		}
	}))
}

func (a *autoPost) serveJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set(contentType, contenttype.JSONUTF8)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.error("Failed to encode JSON response", "err", err, "path", r.URL.Path)
	}
}
