package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mergestat/timediff"
	"go.autopost.app/app/pkgs/bufferpool"
	"go.autopost.app/app/pkgs/contenttype"
	"go.autopost.app/app/pkgs/htmlbuilder"
)

const dashboardNotificationsLimit = 10

// serveDashboard renders the status page: scheduler state, store
// backend, LinkedIn identity, the post queue and recent notifications.
func (a *autoPost) serveDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), schedulerCallTimeout)
	defer cancel()

	var posts []*post
	storeName := "not configured"
	if store, err := a.postStorage(); err == nil {
		storeName = store.name()
		if posts, err = store.scanPosts(ctx); err != nil {
			a.error("Failed to scan posts for dashboard", "err", err)
		}
	}
	notifications, err := a.db.getNotifications(&notificationsRequestConfig{limit: dashboardNotificationsLimit})
	if err != nil {
		a.error("Failed to get notifications for dashboard", "err", err)
	}
	var identity string
	if a.cfg.LinkedIn.enabled() {
		if profile, err := a.linkedinProfile(ctx); err == nil {
			identity = profile.Name
		} else {
			a.error("Failed to fetch LinkedIn profile", "err", err)
		}
	}
	status := a.schedulerSnapshot()

	buf := bufferpool.Get()
	defer bufferpool.Put(buf)
	hb := htmlbuilder.NewHtmlBuilder(buf)

	// Head
	hb.WriteUnescaped("<!doctype html>")
	hb.WriteElementOpen("html", "lang", "en")
	hb.WriteElementOpen("meta", "charset", "utf-8")
	hb.WriteElementOpen("meta", "name", "viewport", "content", "width=device-width,initial-scale=1")
	hb.WriteElementOpen("title")
	hb.WriteEscaped("AutoPost")
	hb.WriteElementClose("title")

	// Header
	hb.WriteElementOpen("header")
	hb.WriteElementOpen("h1")
	hb.WriteEscaped("AutoPost")
	hb.WriteElementClose("h1")
	if identity != "" {
		hb.WriteElementOpen("p")
		hb.WriteElementOpen("i")
		hb.WriteEscaped("Posting as " + identity)
		hb.WriteElementClose("i")
		hb.WriteElementClose("p")
	}
	hb.WriteElementClose("header")

	hb.WriteElementOpen("main")

	// Scheduler
	hb.WriteElementOpen("h2")
	hb.WriteEscaped("Scheduler")
	hb.WriteElementClose("h2")
	hb.WriteElementOpen("p")
	hb.WriteEscaped("State: " + string(status.State))
	hb.WriteEscaped(", checks every " + status.Interval.String())
	hb.WriteEscaped(", store: " + storeName)
	hb.WriteElementClose("p")
	if !status.LastTick.IsZero() {
		hb.WriteElementOpen("p")
		hb.WriteEscaped("Last check: " + timediff.TimeDiff(status.LastTick))
		hb.WriteElementClose("p")
	}
	if status.LastErr != nil {
		hb.WriteElementOpen("p")
		hb.WriteElementOpen("b")
		hb.WriteEscaped("Last error: ")
		hb.WriteElementClose("b")
		hb.WriteEscaped(status.LastErr.Error())
		hb.WriteElementClose("p")
	}

	// Post queue
	hb.WriteElementOpen("h2")
	hb.WriteEscaped("Posts")
	hb.WriteElementClose("h2")
	if len(posts) == 0 {
		hb.WriteElementOpen("p")
		hb.WriteEscaped("No posts")
		hb.WriteElementClose("p")
	} else {
		hb.WriteElementOpen("table")
		hb.WriteElementsOpen("thead", "tr")
		for _, heading := range []string{"#", "Content", "Attachments", "Scheduled", "Status"} {
			hb.WriteElementOpen("th")
			hb.WriteEscaped(heading)
			hb.WriteElementClose("th")
		}
		hb.WriteElementsClose("tr", "thead")
		hb.WriteElementOpen("tbody")
		for _, p := range posts {
			hb.WriteElementOpen("tr")
			hb.WriteElementOpen("td")
			hb.WriteEscaped(strconv.Itoa(p.Number))
			hb.WriteElementClose("td")
			hb.WriteElementOpen("td")
			hb.WriteEscaped(truncateStringWithEllipsis(p.Content, 60))
			hb.WriteElementClose("td")
			hb.WriteElementOpen("td")
			hb.WriteEscaped(strconv.Itoa(len(p.Attachments)))
			hb.WriteElementClose("td")
			hb.WriteElementOpen("td")
			hb.WriteEscaped(p.Scheduled)
			hb.WriteElementClose("td")
			hb.WriteElementOpen("td")
			if p.status() == statusPosted {
				hb.WriteEscaped("posted " + p.PostedAt)
			} else {
				hb.WriteEscaped("pending")
			}
			hb.WriteElementClose("td")
			hb.WriteElementClose("tr")
		}
		hb.WriteElementClose("tbody")
		hb.WriteElementClose("table")
	}

	// Notifications
	hb.WriteElementOpen("h2")
	hb.WriteEscaped("Notifications")
	hb.WriteElementClose("h2")
	for _, n := range notifications {
		hb.WriteElementOpen("div", "class", "p")
		hb.WriteElementOpen("p")
		hb.WriteElementOpen("i")
		hb.WriteEscaped(timediff.TimeDiff(time.Unix(n.Time, 0)))
		hb.WriteElementClose("i")
		hb.WriteElementClose("p")
		hb.WriteElementOpen("pre")
		hb.WriteEscaped(n.Text)
		hb.WriteElementClose("pre")
		hb.WriteElementClose("div")
	}

	hb.WriteElementClose("main")
	hb.WriteElementClose("html")

	w.Header().Set(contentType, contenttype.HTMLUTF8)
	_, _ = buf.WriteTo(w)
}
