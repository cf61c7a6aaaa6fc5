package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/carlmjohnson/requests"
	"github.com/spf13/cast"
	"go.autopost.app/app/pkgs/contenttype"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSheetsEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"
	defaultSheetName      = "Sheet1"

	sheetsScope = "https://www.googleapis.com/auth/spreadsheets"
)

// sheetStore keeps the post queue in a Google Sheet, one post per row.
// The first row is the header and drives the column mapping, data rows
// start at row 2.
type sheetStore struct {
	a *autoPost

	endpoint      string
	spreadsheetId string
	sheetName     string
	client        *http.Client

	sg singleflight.Group
}

func (a *autoPost) initSheetStore() postStore {
	cfg := a.cfg.Sheet
	if cfg == nil || cfg.SpreadsheetId == "" {
		return nil
	}
	key, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		a.error("Failed to read service account file", "err", err)
		return nil
	}
	jwtConfig, err := google.JWTConfigFromJSON(key, sheetsScope)
	if err != nil {
		a.error("Failed to parse service account file", "err", err)
		return nil
	}
	// Token requests go through the app's HTTP client
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, a.httpClient)
	return &sheetStore{
		a:             a,
		endpoint:      defaultIfEmpty(cfg.Endpoint, defaultSheetsEndpoint),
		spreadsheetId: cfg.SpreadsheetId,
		sheetName:     defaultIfEmpty(cfg.SheetName, defaultSheetName),
		client:        jwtConfig.Client(ctx),
	}
}

func (s *sheetStore) name() string {
	return "sheet"
}

func (s *sheetStore) valuesURL(valuesRange string) string {
	return s.endpoint + "/" + s.spreadsheetId + "/values/" + url.PathEscape(valuesRange)
}

func (s *sheetStore) scanRange() string {
	return s.sheetName + "!A:E"
}

func storeStatusValidator(op string) func(*http.Response) error {
	return func(r *http.Response) error {
		if r.StatusCode < 200 || 300 <= r.StatusCode {
			return &storeError{op: op, statusCode: r.StatusCode, err: errors.New(r.Status)}
		}
		return nil
	}
}

// scanPosts fetches the whole sheet. Concurrent scans share one fetch.
func (s *sheetStore) scanPosts(ctx context.Context) ([]*post, error) {
	posts, err, _ := s.sg.Do("scan", func() (any, error) {
		return s.fetchPosts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return posts.([]*post), nil
}

func (s *sheetStore) fetchPosts(ctx context.Context) ([]*post, error) {
	var result struct {
		Values [][]any `json:"values"`
	}
	err := requests.URL(s.valuesURL(s.scanRange())).
		Client(s.client).
		ToJSON(&result).
		AddValidator(storeStatusValidator("scan")).
		Fetch(ctx)
	if err != nil {
		return nil, asStoreError("scan", err)
	}
	if len(result.Values) == 0 {
		return nil, nil
	}
	header := result.Values[0]
	posts := make([]*post, 0, len(result.Values)-1)
	for i, row := range result.Values[1:] {
		p := &post{rowID: i + 2}
		for column, field := range header {
			// Short rows are padded with empty cells
			cell := ""
			if column < len(row) {
				cell = cast.ToString(row[column])
			}
			switch cast.ToString(field) {
			case "post_number":
				p.Number = cast.ToInt(cell)
			case "content":
				p.Content = cell
			case "attachments":
				p.Attachments = splitAttachments(cell)
			case "scheduled_time":
				p.Scheduled = cell
			case "posted_at":
				p.PostedAt = cell
			}
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *sheetStore) appendPost(ctx context.Context, p *post) (int, error) {
	posts, err := s.scanPosts(ctx)
	if err != nil {
		return 0, asStoreError("append", err)
	}
	num := 1
	for _, existing := range posts {
		if existing.Number >= num {
			num = existing.Number + 1
		}
	}
	err = requests.URL(s.valuesURL(s.scanRange())+":append").
		Param("valueInputOption", "RAW").
		Param("insertDataOption", "INSERT_ROWS").
		Method(http.MethodPost).
		Client(s.client).
		BodyJSON(map[string]any{
			"values": [][]string{{strconv.Itoa(num), p.Content, joinAttachments(p.Attachments), p.Scheduled, ""}},
		}).
		ContentType(contenttype.JSON).
		AddValidator(storeStatusValidator("append")).
		Fetch(ctx)
	if err != nil {
		return 0, asStoreError("append", err)
	}
	p.Number = num
	return num, nil
}

func (s *sheetStore) markPosted(ctx context.Context, p *post, timestamp string) error {
	if p.rowID < 2 {
		return asStoreError("mark posted", errors.New("post has no row"))
	}
	cell := fmt.Sprintf("%s!E%d", s.sheetName, p.rowID)
	err := requests.URL(s.valuesURL(cell)).
		Param("valueInputOption", "RAW").
		Method(http.MethodPut).
		Client(s.client).
		BodyJSON(map[string]any{
			"values": [][]string{{timestamp}},
		}).
		ContentType(contenttype.JSON).
		AddValidator(storeStatusValidator("mark posted")).
		Fetch(ctx)
	return asStoreError("mark posted", err)
}
