package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/auth"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/service"
)

// deleteTokenName scopes the signed delete links; deleteTokenMaxAge is how
// long a rendered "Delete" link stays usable, in seconds.
const (
	deleteTokenName   = "delete_post"
	deleteTokenMaxAge = 3600
)

// AdminHandler serves the dashboard-class routes. Every route is mounted
// behind auth.RequireAdmin.
//
// DELETE LINKS:
// /delete_post/{id} is a GET, so a link on another site would be followed
// with the admin's session cookie attached. Every "Delete" link rendered on
// /all_posts therefore carries ?token=, a securecookie value binding the
// signed-in user id to the post id. HandleDelete refuses any request whose
// token is missing, expired, tampered with, or minted for a different user
// or post.
type AdminHandler struct {
	accounts     *service.AuthService
	links        *securecookie.SecureCookie
	posts        *service.PostService
	stats        *service.StatsService
	render       *Renderer
	flashes      *Flasher
	postsPerPage int
	logger       *slog.Logger
}

func NewAdminHandler(
	accounts *service.AuthService,
	posts *service.PostService,
	stats *service.StatsService,
	render *Renderer,
	flashes *Flasher,
	linkKey []byte,
	postsPerPage int,
	logger *slog.Logger,
) *AdminHandler {
	links := securecookie.New(linkKey, nil)
	links.MaxAge(deleteTokenMaxAge)
	return &AdminHandler{
		accounts:     accounts,
		links:        links,
		posts:        posts,
		stats:        stats,
		render:       render,
		flashes:      flashes,
		postsPerPage: postsPerPage,
		logger:       logger,
	}
}

type dashboard struct {
	Email     string
	Today     model.DayStats
	PostCount int
}

func (h *AdminHandler) showDashboard(w http.ResponseWriter, r *http.Request, status int, in form.Post, errs apperror.FieldErrors) {
	sess, _ := auth.SessionFromContext(r.Context())
	user, err := h.accounts.CurrentUser(r.Context(), sess)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	today, err := h.stats.Today(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	count, err := h.posts.Count(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.HTML(w, r, status, "dashboard.html", view{
		Title:  "Dashboard",
		Form:   in,
		Errors: errs,
		Data:   dashboard{Email: user.Email, Today: today, PostCount: count},
	})
}

// HandleDashboard serves GET /dashboard.
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.showDashboard(w, r, http.StatusOK, form.Post{}, nil)
}

// HandleCreatePost serves POST /dashboard.
func (h *AdminHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		redirect(w, r, auth.LoginPath)
		return
	}

	in, err := form.ParsePost(r)
	if err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("", "malformed form"))
		return
	}

	post, err := h.posts.Create(r.Context(), in, sess.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.showDashboard(w, r, http.StatusBadRequest, in, apperror.Fields(err))
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.flashes.Add(w, r, "Post published")
	redirect(w, r, fmt.Sprintf("/post/%d", post.ID))
}

type postRow struct {
	Post        model.Post
	DeleteToken string
}

type allPosts struct {
	Pager pager[model.Post]
	Rows  []postRow
}

// HandleAllPosts serves GET /all_posts?page=N.
func (h *AdminHandler) HandleAllPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), pageParam(r), h.postsPerPage)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())
	rows := make([]postRow, 0, len(page.Items))
	for _, p := range page.Items {
		token, err := h.deleteToken(sess, p.ID)
		if err != nil {
			h.render.Error(w, r, fmt.Errorf("signing delete link for post %d: %w", p.ID, err))
			return
		}
		rows = append(rows, postRow{Post: p, DeleteToken: token})
	}

	h.render.HTML(w, r, http.StatusOK, "all_posts.html", view{
		Title: "All posts",
		Data: allPosts{
			Pager: pager[model.Post]{Page: page, Base: "/all_posts"},
			Rows:  rows,
		},
	})
}

func deleteClaim(sess *auth.Session, postID int64) string {
	var userID int64
	if sess != nil {
		userID = sess.UserID
	}
	return fmt.Sprintf("%d:%d", userID, postID)
}

func (h *AdminHandler) deleteToken(sess *auth.Session, postID int64) (string, error) {
	return h.links.Encode(deleteTokenName, deleteClaim(sess, postID))
}

// validDeleteToken reports whether r carries a delete token minted for the
// current session and postID.
func (h *AdminHandler) validDeleteToken(r *http.Request, postID int64) bool {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		return false
	}
	var claim string
	if err := h.links.Decode(deleteTokenName, raw, &claim); err != nil {
		return false
	}
	sess, _ := auth.SessionFromContext(r.Context())
	return claim == deleteClaim(sess, postID)
}

type updatePage struct {
	ID int64
}

// HandleEditForm serves GET /update/{id} with the form pre-filled.
func (h *AdminHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.HTML(w, r, http.StatusOK, "update.html", view{
		Title: "Edit " + post.Title,
		Form:  form.Post{Title: post.Title, Description: post.Description, Body: post.Body},
		Data:  updatePage{ID: id},
	})
}

// HandleUpdate serves POST /update/{id}.
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	in, err := form.ParsePost(r)
	if err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("", "malformed form"))
		return
	}

	if _, err := h.posts.Update(r.Context(), id, in); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.render.HTML(w, r, http.StatusBadRequest, "update.html", view{
				Title:  "Edit post",
				Form:   in,
				Errors: apperror.Fields(err),
				Data:   updatePage{ID: id},
			})
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.flashes.Add(w, r, "Post updated")
	redirect(w, r, fmt.Sprintf("/post/%d", id))
}

// HandleDelete serves GET /delete_post/{id}?token=T.
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	if !h.validDeleteToken(r, id) {
		h.logger.Warn("delete without a valid link token", slog.Int64("postID", id))
		h.render.Error(w, r, apperror.Forbidden("This delete link is invalid or has expired."))
		return
	}
	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.flashes.Add(w, r, "Post deleted")
	redirect(w, r, "/all_posts")
}
