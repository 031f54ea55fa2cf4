package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portfolio/app/services"
	"portfolio/app/sessions"
)

var errInvalidPostID = errors.New("invalid post ID")

// SavedController serves the visitor's saved-for-later list
type SavedController struct {
	bookmarks *services.BookmarkService
	sessions  *sessions.Manager
	templates Templates
	logger    *slog.Logger
}

// NewSavedController creates a new SavedController
func NewSavedController(deps Dependencies) *SavedController {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SavedController{
		bookmarks: deps.Bookmarks,
		sessions:  deps.Sessions,
		templates: deps.Templates,
		logger:    logger,
	}
}

type toggleResult struct {
	PostID      int   `json:"post_id"`
	Saved       bool  `json:"saved"`
	StoredPosts []int `json:"stored_posts"`
}

// Index lists the saved posts
func (sc *SavedController) Index(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(sc.sessions, w, r)
	saved, err := sc.bookmarks.List(r.Context(), sess)
	if err != nil {
		fail(sc.logger, w, r, err)
		return
	}
	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, saved)
		return
	}
	sc.templates.render(sc.logger, w, r, "saved", http.StatusOK, saved)
}

// Toggle adds post_id to the list, or removes it when already present, then sends the
// visitor back where they came from
func (sc *SavedController) Toggle(w http.ResponseWriter, r *http.Request) {
	postID, err := decodePostID(r)
	if err != nil {
		sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	sess := sessionFor(sc.sessions, w, r)
	ids, saved := sc.bookmarks.Toggle(sess, postID)
	if err := sc.sessions.Save(r.Context(), sess); err != nil {
		sc.logger.Error("failed to save session", "error", err)
		sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, toggleResult{PostID: postID, Saved: saved, StoredPosts: ids})
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func decodePostID(r *http.Request) (int, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			PostID json.Number `json:"post_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return 0, err
		}
		return parsePostID(body.PostID.String())
	}
	if err := r.ParseForm(); err != nil {
		return 0, err
	}
	return parsePostID(r.PostFormValue("post_id"))
}

func parsePostID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, errInvalidPostID
	}
	return id, nil
}

// backTo is the path of a same-host Referer, or "/".
func backTo(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, `\`) {
		return "/"
	}
	return u.RequestURI()
}
