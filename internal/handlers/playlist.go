package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"playlist-gen/internal/generator"
	"playlist-gen/internal/logging"
	"playlist-gen/internal/middleware"
	"playlist-gen/internal/playlist"
	"playlist-gen/internal/probe"
	"playlist-gen/internal/scanner"
)

var errOutsideMediaDir = errors.New("path escapes the media directory")

// GetPlaylist renders the XSPF playlist of a directory below the media root.
//
// Query parameters:
//   - name: playlist title (default: the directory's base name)
//   - compact: "1" or "true" for whitespace-free output
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	relPath := mux.Vars(r)["path"]

	root, err := h.resolveRoot(relPath)
	if err != nil {
		writeJSONError(w, ErrorResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}

	title := r.URL.Query().Get("name")
	if title == "" {
		title = generator.DefaultTitle(root)
	}
	if strings.ContainsAny(title, `/\`) {
		writeJSONError(w, ErrorResponse{Error: "name must not contain a path separator"}, http.StatusBadRequest)
		return
	}
	if err := playlist.CheckTitle(title); err != nil {
		writeJSONError(w, ErrorResponse{Error: "name: " + err.Error()}, http.StatusBadRequest)
		return
	}

	gen := *h.gen
	gen.Progress = nil
	if compact, _ := strconv.ParseBool(r.URL.Query().Get("compact")); compact {
		gen.Format = playlist.FormatCompact
	}

	res, err := gen.Render(r.Context(), root, title)
	if err != nil {
		h.writeBuildError(w, err)
		return
	}
	h.recordBuild(res)

	w.Header().Set("Content-Type", playlist.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(res.Title+generator.OutputExtension))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set(middleware.BuildIDHeader, res.BuildID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logging.Debug("[%s] Client went away while sending playlist: %v", res.BuildID, err)
	}
}

// resolveRoot joins relPath onto the media directory and rejects anything
// that would leave it, either lexically or through a symlink.
func (h *Handlers) resolveRoot(relPath string) (string, error) {
	root := filepath.Join(h.mediaDir, filepath.FromSlash(relPath))
	if !within(h.mediaDir, root) {
		return "", errOutsideMediaDir
	}

	// A missing root is left for the scan to report as not found.
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root, nil
	}
	realMedia, err := filepath.EvalSymlinks(h.mediaDir)
	if err != nil {
		realMedia = h.mediaDir
	}
	if !within(realMedia, realRoot) {
		logging.Warn("Rejected playlist request for %s: resolves to %s outside the media directory", root, realRoot)
		return "", errOutsideMediaDir
	}
	return root, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (h *Handlers) writeBuildError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Stage: generator.Stage(err)}

	var (
		invalidRoot *scanner.InvalidRootError
		resolution  *probe.ResolutionError
	)
	switch {
	case errors.As(err, &invalidRoot):
		resp.Path = h.relative(invalidRoot.Root)
		writeJSONError(w, resp, http.StatusNotFound)
	case errors.As(err, &resolution):
		resp.Path = h.relative(resolution.Path)
		writeJSONError(w, resp, http.StatusUnprocessableEntity)
	default:
		writeJSONError(w, resp, http.StatusInternalServerError)
	}
}

// relative hides the media directory from clients.
func (h *Handlers) relative(path string) string {
	rel, err := filepath.Rel(h.mediaDir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func contentDisposition(filename string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filename)
	return `attachment; filename="` + escaped + `"`
}
