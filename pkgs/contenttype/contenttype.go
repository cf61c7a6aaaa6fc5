package contenttype

// This package contains constants for the content types AutoPost serves and accepts

const (
	CharsetUtf8Suffix = "; charset=utf-8"

	HTML          = "text/html"
	JSON          = "application/json"
	MultipartForm = "multipart/form-data"
	Text          = "text/plain"
	WWWForm       = "application/x-www-form-urlencoded"

	HTMLUTF8 = HTML + CharsetUtf8Suffix
	JSONUTF8 = JSON + CharsetUtf8Suffix
	TextUTF8 = Text + CharsetUtf8Suffix
)
