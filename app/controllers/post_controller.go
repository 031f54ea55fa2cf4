package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portfolio/app/models"
	"portfolio/app/pagination"
	"portfolio/app/query"
	"portfolio/app/services"
	"portfolio/app/sessions"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the controllers share.
type Dependencies struct {
	Posts     *services.PostService
	Comments  *services.CommentService
	Tags      *services.TagService
	Bookmarks *services.BookmarkService
	Sessions  *sessions.Manager
	Templates Templates
	Logger    *slog.Logger
}

// PostController handles HTTP requests for blog posts and their comments
type PostController struct {
	posts     *services.PostService
	comments  *services.CommentService
	tags      *services.TagService
	bookmarks *services.BookmarkService
	sessions  *sessions.Manager
	templates Templates
	logger    *slog.Logger
}

// NewPostController creates a new PostController
func NewPostController(deps Dependencies) *PostController {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PostController{
		posts:     deps.Posts,
		comments:  deps.Comments,
		tags:      deps.Tags,
		bookmarks: deps.Bookmarks,
		sessions:  deps.Sessions,
		templates: deps.Templates,
		logger:    logger,
	}
}

type listingView struct {
	pagination.Page[*models.Post]
	Tags          []models.TagCount `json:"tags"`
	TotalPosts    int               `json:"total_posts"`
	FilteredCount int               `json:"filtered_count"`
	SearchQuery   string            `json:"search_query"`
	ActiveTag     string            `json:"active_tag"`
}

// PageURL links to page n of the listing, keeping the current filter.
func (v listingView) PageURL(n int) string {
	values := url.Values{}
	if v.SearchQuery != "" {
		values.Set("q", v.SearchQuery)
	}
	if v.ActiveTag != "" {
		values.Set("tag", v.ActiveTag)
	}
	values.Set("page", strconv.Itoa(n))
	return "/posts/?" + values.Encode()
}

// TagURL links to the listing filtered by caption, keeping the search term.
func (v listingView) TagURL(caption string) string {
	values := url.Values{}
	if v.SearchQuery != "" {
		values.Set("q", v.SearchQuery)
	}
	values.Set("tag", caption)
	return "/posts/?" + values.Encode()
}

type commentForm struct {
	Values models.CommentInput `json:"values"`
	Errors map[string]string   `json:"errors"`
}

type detailView struct {
	Post          *models.Post      `json:"post"`
	PostTags      []*models.Tag     `json:"post_tags"`
	Comments      []*models.Comment `json:"comments"`
	CommentForm   commentForm       `json:"comment_form"`
	SavedForLater bool              `json:"saved_for_later"`
}

// Home shows the most recent posts, three per page
func (pc *PostController) Home(w http.ResponseWriter, r *http.Request) {
	page, err := pc.posts.Home(r.Context(), pageParam(r))
	if err != nil {
		fail(pc.logger, w, r, err)
		return
	}
	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, page)
		return
	}
	pc.templates.render(pc.logger, w, r, "home", http.StatusOK, page)
}

// Index lists posts matching the q and tag parameters, twelve per page
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	listing, err := pc.posts.List(r.Context(), query.Filter{
		Search: params.Get("q"),
		Tag:    params.Get("tag"),
	})
	if err != nil {
		fail(pc.logger, w, r, err)
		return
	}

	view := listingView{
		Page:          pagination.Paginate(listing.Posts, pageParam(r), pagination.ListPageSize),
		Tags:          listing.Tags,
		TotalPosts:    listing.TotalPosts,
		FilteredCount: listing.FilteredCount,
		SearchQuery:   listing.SearchQuery,
		ActiveTag:     listing.ActiveTag,
	}
	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, view)
		return
	}
	pc.templates.render(pc.logger, w, r, "index", http.StatusOK, view)
}

// Show displays a single post with its comments and an empty comment form
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	view, err := pc.detail(w, r, mux.Vars(r)["slug"])
	if err != nil {
		fail(pc.logger, w, r, err)
		return
	}
	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, view)
		return
	}
	pc.templates.render(pc.logger, w, r, "show", http.StatusOK, view)
}

// Comment accepts a comment on the post. Pages get a redirect on success and the post
// re-rendered with field errors on failure; API callers get 201 or 422.
func (pc *PostController) Comment(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	in, err := decodeComment(r)
	if err != nil {
		sendError(w, r, "Invalid comment: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := pc.comments.Submit(r.Context(), slug, in)
	if ve, ok := models.IsValidationError(err); ok {
		if wantsJSON(r) {
			sendJSON(w, http.StatusUnprocessableEntity, ve)
			return
		}
		view, err := pc.detail(w, r, slug)
		if err != nil {
			fail(pc.logger, w, r, err)
			return
		}
		view.CommentForm = commentForm{Values: in, Errors: ve.Fields}
		pc.templates.render(pc.logger, w, r, "show", http.StatusOK, view)
		return
	}
	if err != nil {
		fail(pc.logger, w, r, err)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusCreated, comment)
		return
	}
	http.Redirect(w, r, "/posts/"+url.PathEscape(slug)+"/", http.StatusSeeOther)
}

// Tags lists every tag in use with its post count
func (pc *PostController) Tags(w http.ResponseWriter, r *http.Request) {
	counts, err := pc.tags.Counts(r.Context())
	if err != nil {
		fail(pc.logger, w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"tags": counts})
}

func (pc *PostController) detail(w http.ResponseWriter, r *http.Request, slug string) (*detailView, error) {
	detail, err := pc.posts.Detail(r.Context(), slug)
	if err != nil {
		return nil, err
	}
	sess := sessionFor(pc.sessions, w, r)

	tags := detail.Post.Tags
	if tags == nil {
		tags = []*models.Tag{}
	}
	return &detailView{
		Post:          detail.Post,
		PostTags:      tags,
		Comments:      detail.Comments,
		CommentForm:   commentForm{Errors: map[string]string{}},
		SavedForLater: pc.bookmarks.IsSaved(sess, detail.Post.ID),
	}, nil
}

func decodeComment(r *http.Request) (models.CommentInput, error) {
	var in models.CommentInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Name = r.PostFormValue("name")
	in.Email = r.PostFormValue("email")
	in.Comment = r.PostFormValue("comment")
	return in, nil
}

// sessionFor returns the session the middleware attached, starting one when the handler
// is mounted without it.
func sessionFor(m *sessions.Manager, w http.ResponseWriter, r *http.Request) *sessions.Session {
	if sess := sessions.FromContext(r.Context()); sess != nil {
		return sess
	}
	return m.Start(w, r)
}
