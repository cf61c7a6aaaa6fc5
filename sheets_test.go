package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSheetStore(fc *fakeHttpClient) *sheetStore {
	return &sheetStore{
		a:             &autoPost{cfg: createDefaultConfig()},
		endpoint:      "https://sheets.example.com/v4/spreadsheets",
		spreadsheetId: "sheet123",
		sheetName:     "Sheet1",
		client:        fc.Client,
	}
}

const testSheetValues = `{
	"range": "Sheet1!A1:E4",
	"majorDimension": "ROWS",
	"values": [
		["post_number", "content", "attachments", "scheduled_time", "posted_at"],
		[1, "First post", "a.png, b.mp4", "2024-05-01 14:30:00", "2024-05-01 14:31:02"],
		["2", "Second post", "", "2024-05-02 14:30:00"],
		["3", "Third post"]
	]
}`

func Test_sheetStore_scanPosts(t *testing.T) {
	fc := newFakeHttpClient()
	fc.setFakeResponse(http.StatusOK, testSheetValues)
	store := newTestSheetStore(fc)

	posts, err := store.scanPosts(context.Background())
	require.NoError(t, err)

	require.NotNil(t, fc.req)
	assert.Equal(t, http.MethodGet, fc.req.Method)
	assert.Equal(t, "/v4/spreadsheets/sheet123/values/Sheet1!A:E", fc.req.URL.Path)

	require.Len(t, posts, 3)

	assert.Equal(t, 1, posts[0].Number)
	assert.Equal(t, "First post", posts[0].Content)
	assert.Equal(t, []string{"a.png", "b.mp4"}, posts[0].Attachments)
	assert.Equal(t, "2024-05-01 14:30:00", posts[0].Scheduled)
	assert.Equal(t, "2024-05-01 14:31:02", posts[0].PostedAt)
	assert.Equal(t, 2, posts[0].rowID)
	assert.Equal(t, statusPosted, posts[0].status())

	// Short rows are padded
	assert.Equal(t, 2, posts[1].Number)
	assert.Empty(t, posts[1].Attachments)
	assert.Empty(t, posts[1].PostedAt)
	assert.Equal(t, 3, posts[1].rowID)

	assert.Equal(t, 3, posts[2].Number)
	assert.Empty(t, posts[2].Scheduled)
	assert.Equal(t, 4, posts[2].rowID)
	assert.Equal(t, statusPending, posts[2].status())
}

func Test_sheetStore_scanPosts_empty(t *testing.T) {
	fc := newFakeHttpClient()
	fc.setFakeResponse(http.StatusOK, `{"range":"Sheet1!A1:E1","majorDimension":"ROWS"}`)
	store := newTestSheetStore(fc)

	posts, err := store.scanPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func Test_sheetStore_scanPosts_error(t *testing.T) {
	fc := newFakeHttpClient()
	fc.setFakeResponse(http.StatusForbidden, `{"error":{"status":"PERMISSION_DENIED"}}`)
	store := newTestSheetStore(fc)

	_, err := store.scanPosts(context.Background())
	require.Error(t, err)

	se := &storeError{}
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.statusCode)
}

func Test_sheetStore_appendPost(t *testing.T) {
	fc := newFakeHttpClient()
	var appendBody struct {
		Values [][]string `json:"values"`
	}
	fc.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&appendBody))
			_, _ = rw.Write([]byte(`{}`))
			return
		}
		_, _ = rw.Write([]byte(testSheetValues))
	}))
	store := newTestSheetStore(fc)

	p := &post{
		Content:     "Fourth post",
		Attachments: []string{"c.png"},
		Scheduled:   "2024-05-04 10:00:00",
	}
	num, err := store.appendPost(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 4, num)
	assert.Equal(t, 4, p.Number)

	require.NotNil(t, fc.req)
	assert.Equal(t, http.MethodPost, fc.req.Method)
	assert.Equal(t, "/v4/spreadsheets/sheet123/values/Sheet1!A:E:append", fc.req.URL.Path)
	assert.Equal(t, "RAW", fc.req.URL.Query().Get("valueInputOption"))
	assert.Equal(t, "INSERT_ROWS", fc.req.URL.Query().Get("insertDataOption"))

	require.Len(t, appendBody.Values, 1)
	assert.Equal(t, []string{"4", "Fourth post", "c.png", "2024-05-04 10:00:00", ""}, appendBody.Values[0])
}

func Test_sheetStore_appendPost_emptySheet(t *testing.T) {
	fc := newFakeHttpClient()
	fc.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = rw.Write([]byte(`{}`))
			return
		}
		_, _ = rw.Write([]byte(`{"values":[["post_number","content","attachments","scheduled_time","posted_at"]]}`))
	}))
	store := newTestSheetStore(fc)

	num, err := store.appendPost(context.Background(), &post{Content: "First"})
	require.NoError(t, err)
	assert.Equal(t, 1, num)
}

func Test_sheetStore_markPosted(t *testing.T) {
	fc := newFakeHttpClient()
	var updateBody struct {
		Values [][]string `json:"values"`
	}
	fc.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&updateBody))
		_, _ = rw.Write([]byte(`{}`))
	}))
	store := newTestSheetStore(fc)

	err := store.markPosted(context.Background(), &post{Number: 2, rowID: 3}, "2024-05-02 14:31:00")
	require.NoError(t, err)

	require.NotNil(t, fc.req)
	assert.Equal(t, http.MethodPut, fc.req.Method)
	assert.Equal(t, "/v4/spreadsheets/sheet123/values/Sheet1!E3", fc.req.URL.Path)
	assert.Equal(t, "RAW", fc.req.URL.Query().Get("valueInputOption"))
	require.Len(t, updateBody.Values, 1)
	assert.Equal(t, []string{"2024-05-02 14:31:00"}, updateBody.Values[0])

	// Only posts captured from a scan can be marked
	assert.Error(t, store.markPosted(context.Background(), &post{Number: 9}, "2024-05-02 14:31:00"))
}
