package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/dgraph-io/ristretto"
	"go.autopost.app/app/pkgs/contenttype"
	"go.autopost.app/app/pkgs/httpcachetransport"
)

const (
	defaultLinkedInApiBase = "https://api.linkedin.com/v2"

	restliProtocolHeader  = "X-Restli-Protocol-Version"
	restliProtocolVersion = "2.0.0"
	restliIdHeader        = "X-RestLi-Id"
)

func (li *configLinkedIn) enabled() bool {
	return li != nil && li.AccessToken != "" && li.PersonURN != ""
}

func (li *configLinkedIn) apiBase() string {
	return defaultIfEmpty(li.ApiBase, defaultLinkedInApiBase)
}

// publishError is a non-2xx answer from LinkedIn. Retrying is the
// caller's decision, never done here.
type publishError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *publishError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("linkedin: %s: %s", e.Status, e.Message)
	}
	return "linkedin: " + e.Status
}

func publishErrorValidator(r *http.Response) error {
	if 200 <= r.StatusCode && r.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(r.Body, 1000))
	return &publishError{
		StatusCode: r.StatusCode,
		Status:     r.Status,
		Message:    strings.TrimSpace(string(body)),
	}
}

const (
	mediaKindImage = "image"
	mediaKindVideo = "video"
)

func mediaKind(attachment string) string {
	if _, isVideo := urlHasExt(attachment, "mp4", "avi", "mov"); isVideo {
		return mediaKindVideo
	}
	return mediaKindImage
}

type registeredUpload struct {
	uploadUrl string
	asset     string
}

// registerUpload asks LinkedIn for an upload slot for one media file
// and returns the upload URL together with the future asset URN.
func (a *autoPost) registerUpload(ctx context.Context, kind string) (*registeredUpload, error) {
	li := a.cfg.LinkedIn
	var response struct {
		Value struct {
			UploadMechanism struct {
				UploadRequest struct {
					UploadUrl string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
			Asset string `json:"asset"`
		} `json:"value"`
	}
	err := requests.URL(li.apiBase()+"/assets").
		Param("action", "registerUpload").
		Method(http.MethodPost).
		Client(a.httpClient).
		Bearer(li.AccessToken).
		Header(restliProtocolHeader, restliProtocolVersion).
		BodyJSON(map[string]any{
			"registerUploadRequest": map[string]any{
				"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-" + kind},
				"owner":   li.PersonURN,
				"serviceRelationships": []map[string]string{{
					"relationshipType": "OWNER",
					"identifier":       "urn:li:userGeneratedContent",
				}},
			},
		}).
		ContentType(contenttype.JSON).
		ToJSON(&response).
		AddValidator(publishErrorValidator).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	registered := &registeredUpload{
		uploadUrl: response.Value.UploadMechanism.UploadRequest.UploadUrl,
		asset:     response.Value.Asset,
	}
	if registered.uploadUrl == "" || registered.asset == "" {
		return nil, errors.New("linkedin: upload url or asset missing in register response")
	}
	return registered, nil
}

// uploadAsset puts the raw media bytes to the registered upload URL.
func (a *autoPost) uploadAsset(ctx context.Context, uploadUrl string, file io.Reader) error {
	return requests.URL(uploadUrl).
		Method(http.MethodPut).
		Client(a.httpClient).
		Bearer(a.cfg.LinkedIn.AccessToken).
		BodyReader(file).
		AddValidator(publishErrorValidator).
		Fetch(ctx)
}

// openAttachment opens a local file or starts downloading a remote one.
// The size is -1 when it is unknown.
func (a *autoPost) openAttachment(ctx context.Context, attachment string) (io.ReadCloser, int64, error) {
	if isAbsoluteURL(attachment) {
		pr, pw := io.Pipe()
		go func() {
			_ = pw.CloseWithError(
				requests.URL(attachment).Client(a.httpClient).ToWriter(pw).Fetch(ctx),
			)
		}()
		return pr, -1, nil
	}
	file, err := os.Open(a.resolveAttachmentPath(attachment))
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, err
	}
	return file, info.Size(), nil
}

func (a *autoPost) uploadAttachment(ctx context.Context, attachment string) (string, error) {
	file, size, err := a.openAttachment(ctx, attachment)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if max := a.cfg.LinkedIn.maxMediaBytes; max > 0 && size > 0 && uint64(size) > max {
		return "", fmt.Errorf("attachment exceeds media size limit (%d bytes)", size)
	}
	registered, err := a.registerUpload(ctx, mediaKind(attachment))
	if err != nil {
		return "", err
	}
	if err = a.uploadAsset(ctx, registered.uploadUrl, file); err != nil {
		return "", err
	}
	return registered.asset, nil
}

// createPost creates one LinkedIn post. It always posts exactly once,
// calling it again creates a duplicate. The returned id comes from the
// X-RestLi-Id response header.
func (a *autoPost) createPost(ctx context.Context, content string, assets []string) (string, error) {
	li := a.cfg.LinkedIn
	shareContent := map[string]any{
		"shareCommentary":    map[string]string{"text": content},
		"shareMediaCategory": "NONE",
	}
	if len(assets) > 0 {
		media := make([]map[string]string, 0, len(assets))
		for _, asset := range assets {
			media = append(media, map[string]string{"status": "READY", "media": asset})
		}
		shareContent["shareMediaCategory"] = "IMAGE"
		shareContent["media"] = media
	}
	headers := http.Header{}
	err := requests.URL(li.apiBase()+"/ugcPosts").
		Method(http.MethodPost).
		Client(a.httpClient).
		Bearer(li.AccessToken).
		Header(restliProtocolHeader, restliProtocolVersion).
		BodyJSON(map[string]any{
			"author":         li.PersonURN,
			"lifecycleState": "PUBLISHED",
			"visibility": map[string]string{
				"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
			},
			"specificContent": map[string]any{
				"com.linkedin.ugc.ShareContent": shareContent,
			},
		}).
		ContentType(contenttype.JSON).
		ToHeaders(headers).
		AddValidator(publishErrorValidator).
		Fetch(ctx)
	if err != nil {
		return "", err
	}
	return defaultIfEmpty(headers.Get(restliIdHeader), "unknown"), nil
}

// publishPost publishes one post. Attachments that cannot be uploaded
// are skipped, a post whose uploads all fail goes out as text-only.
func (a *autoPost) publishPost(ctx context.Context, p *post) (string, error) {
	if !a.cfg.LinkedIn.enabled() {
		return "", errors.New("linkedin not configured")
	}
	var assets []string
	for _, attachment := range p.Attachments {
		asset, err := a.uploadAttachment(ctx, attachment)
		if err != nil {
			a.error("Failed to upload attachment, skipping it", "post", p.Number, "attachment", attachment, "err", err)
			continue
		}
		assets = append(assets, asset)
	}
	return a.createPost(ctx, p.Content, assets)
}

type linkedinProfile struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
}

func (a *autoPost) initLiProfileClient() {
	a.liProfileInit.Do(func() {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 100,
			MaxCost:     10,
			BufferItems: 64,
		})
		if err != nil {
			a.liProfileClient = a.httpClient
			return
		}
		a.liProfileClient = &http.Client{
			Timeout:   a.httpClient.Timeout,
			Transport: httpcachetransport.NewHttpCacheTransport(a.httpClient.Transport, cache, 10*time.Minute),
		}
	})
}

// linkedinProfile fetches the profile behind the configured token.
// Responses are cached for a few minutes, the dashboard polls this.
func (a *autoPost) linkedinProfile(ctx context.Context) (*linkedinProfile, error) {
	li := a.cfg.LinkedIn
	if !li.enabled() {
		return nil, errors.New("linkedin not configured")
	}
	a.initLiProfileClient()
	profile := &linkedinProfile{}
	err := requests.URL(li.apiBase()+"/userinfo").
		Client(a.liProfileClient).
		Bearer(li.AccessToken).
		ToJSON(profile).
		AddValidator(publishErrorValidator).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
