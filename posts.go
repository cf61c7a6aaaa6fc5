package main

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// post is one row of the backing store. Schedule and completion
// timestamps stay raw strings, exactly as the store holds them. rowID
// is the store's native 1-based row number including the header row,
// captured at scan time and used as the update key when marking.
type post struct {
	Number      int
	Content     string
	Attachments []string
	Scheduled   string
	PostedAt    string

	rowID int
}

type postStatus string

const (
	statusPending postStatus = "pending"
	statusPosted  postStatus = "posted"
)

func (p *post) status() postStatus {
	if strings.TrimSpace(p.PostedAt) != "" {
		return statusPosted
	}
	return statusPending
}

func (p *post) pending() bool {
	return p.status() == statusPending
}

// due reports whether the post is still pending and its schedule has
// passed. Posts with a blank or unparsable schedule are never due.
func (p *post) due(now time.Time, loc *time.Location) bool {
	if !p.pending() {
		return false
	}
	scheduled, ok := parseScheduleTime(p.Scheduled, loc)
	if !ok {
		return false
	}
	return !scheduled.After(now)
}

// duePosts filters a scan snapshot down to the posts to publish now,
// keeping the store order.
func duePosts(posts []*post, now time.Time, loc *time.Location) []*post {
	return lo.Filter(posts, func(p *post, _ int) bool {
		return p.due(now, loc)
	})
}

func joinAttachments(attachments []string) string {
	return strings.Join(attachments, ", ")
}

func splitAttachments(joined string) []string {
	var attachments []string
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			attachments = append(attachments, part)
		}
	}
	return attachments
}
