package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/form"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/service"
)

// PageHandler serves the public pages: home, blog listing and post detail.
type PageHandler struct {
	posts    *service.PostService
	comments *service.CommentService
	render   *Renderer
	flashes  *Flasher
	logger   *slog.Logger

	recent          int
	postsPerPage    int
	commentsPerPage int
}

// PageSizes configures listing lengths.
type PageSizes struct {
	Recent   int
	Posts    int
	Comments int
}

func NewPageHandler(
	posts *service.PostService,
	comments *service.CommentService,
	render *Renderer,
	flashes *Flasher,
	sizes PageSizes,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		posts:           posts,
		comments:        comments,
		render:          render,
		flashes:         flashes,
		logger:          logger,
		recent:          sizes.Recent,
		postsPerPage:    sizes.Posts,
		commentsPerPage: sizes.Comments,
	}
}

type pager[T any] struct {
	Page model.Page[T]
	Base string
}

type postPage struct {
	Post     *model.Post
	Comments model.Page[model.Comment]
	Pager    pager[model.Comment]
}

// HandleIndex serves GET / and GET /index.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListRecent(r.Context(), h.recent)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "index.html", view{
		Data: map[string]any{"Posts": posts},
	})
}

// HandleBlog serves GET /blog?page=N.
func (h *PageHandler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), pageParam(r), h.postsPerPage)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "blog.html", view{
		Title: "Blog",
		Data:  pager[model.Post]{Page: page, Base: "/blog"},
	})
}

// HandlePost serves GET /post/{id}?page=N.
func (h *PageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.showPost(w, r, id, http.StatusOK, form.Comment{}, nil)
}

// HandleComment serves POST /post/{id}: a visitor leaves a comment.
func (h *PageHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	in, err := form.ParseComment(r)
	if err != nil {
		h.render.Error(w, r, apperror.ValidationFailed("", "malformed form"))
		return
	}

	if _, err := h.comments.Create(r.Context(), id, in); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.showPost(w, r, id, http.StatusBadRequest, in, apperror.Fields(err))
			return
		}
		h.render.Error(w, r, err)
		return
	}

	h.flashes.Add(w, r, "Comment posted")
	redirect(w, r, fmt.Sprintf("/post/%d", id))
}

func (h *PageHandler) showPost(w http.ResponseWriter, r *http.Request, id int64, status int, in form.Comment, errs apperror.FieldErrors) {
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	page := pageParam(r)
	if r.Method == http.MethodPost {
		page = 1
	}
	comments, err := h.comments.List(r.Context(), id, page, h.commentsPerPage)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	h.render.HTML(w, r, status, "post.html", view{
		Title:  post.Title,
		Form:   in,
		Errors: errs,
		Data: postPage{
			Post:     post,
			Comments: comments,
			Pager:    pager[model.Comment]{Page: comments, Base: fmt.Sprintf("/post/%d", id)},
		},
	})
}
