package main

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/samber/lo"
)

type contextKey string

const (
	contentType = "Content-Type"

	userAgent    = "User-Agent"
	appUserAgent = "AutoPost"
)

func defaultIfEmpty(s, d string) string {
	if s != "" {
		return s
	}
	return d
}

func isAbsoluteURL(s string) bool {
	if !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "http://") {
		return false
	}
	if _, err := url.Parse(s); err != nil {
		return false
	}
	return true
}

func urlHasExt(rawUrl string, extensions ...string) (ext string, has bool) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", false
	}
	ext = strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return "", false
	}
	ext = ext[1:]
	return ext, lo.Contains(extensions, ext)
}

func truncateStringWithEllipsis(str string, limit int) string {
	if len(str) > limit {
		return strings.TrimSpace(str[:limit]) + "…"
	}
	return str
}

func getSHA256(file io.ReadSeeker) (filename string, err error) {
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	h := sha256.New()
	if _, err = io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
