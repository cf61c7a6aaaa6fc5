package main

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.autopost.app/app/pkgs/contenttype"
	"go.autopost.app/app/pkgs/utils"
)

func (a *autoPost) mediaFilePath(fileName string) string {
	return filepath.Join(a.cfg.Media.Path, fileName)
}

// resolveAttachmentPath maps staged media references of the form
// /media/<file> onto the media directory. Everything else is used as a
// local file path directly.
func (a *autoPost) resolveAttachmentPath(attachment string) string {
	if file, ok := strings.CutPrefix(attachment, mediaPath+"/"); ok {
		return a.mediaFilePath(file)
	}
	return attachment
}

// serveMediaUpload stages an attachment file in the media directory.
// The file is stored under the SHA-256 hash of its content, so repeated
// uploads of the same file land on the same location.
func (a *autoPost) serveMediaUpload(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get(contentType); !strings.Contains(ct, contenttype.MultipartForm) {
		a.serveError(w, r, "wrong content-type", http.StatusBadRequest)
		return
	}
	err := r.ParseMultipartForm(0)
	if err != nil {
		a.serveError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.serveError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	hashFile, _, _ := r.FormFile("file")
	defer func() { _ = hashFile.Close() }()
	fileName, err := getSHA256(hashFile)
	if err != nil {
		a.serveError(w, r, err.Error(), http.StatusInternalServerError)
		return
	}
	fileExtension := filepath.Ext(header.Filename)
	if len(fileExtension) == 0 {
		// Find the file extension when the original name has none
		mimeType := header.Header.Get(contentType)
		if len(mimeType) > 0 {
			allExtensions, _ := mime.ExtensionsByType(mimeType)
			if len(allExtensions) > 0 {
				fileExtension = allExtensions[0]
			}
		}
	}
	fileName += strings.ToLower(fileExtension)
	if err = utils.SaveToFile(file, a.mediaFilePath(fileName)); err != nil {
		a.serveError(w, r, "failed to save file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	location := mediaPath + "/" + fileName
	a.info("Saved media file", "location", location)
	http.Redirect(w, r, location, http.StatusCreated)
}

func (a *autoPost) serveMediaFile(w http.ResponseWriter, r *http.Request) {
	f := a.mediaFilePath(chi.URLParam(r, "file"))
	if _, err := os.Stat(f); err != nil {
		a.serve404(w, r)
		return
	}
	http.ServeFile(w, r, f)
}
