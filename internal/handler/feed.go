package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/sakif/quill/internal/chart"
	"github.com/sakif/quill/internal/feed"
	"github.com/sakif/quill/internal/model"
	"github.com/sakif/quill/internal/service"
)

// FeedHandler serves the machine-readable outputs: the RSS feed and the
// statistics charts.
type FeedHandler struct {
	posts  *service.PostService
	stats  *service.StatsService
	site   feed.Site
	render *Renderer
	logger *slog.Logger
}

func NewFeedHandler(posts *service.PostService, stats *service.StatsService, site Site, render *Renderer, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		posts:  posts,
		stats:  stats,
		site:   feed.Site{Title: site.Title, URL: site.URL, Description: site.Description},
		render: render,
		logger: logger,
	}
}

// HandleRSS serves GET /rss with every post, newest first.
func (h *FeedHandler) HandleRSS(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.All(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := feed.WriteRSS(&buf, h.site, posts); err != nil {
		h.render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", feed.ContentType)
	_, _ = buf.WriteTo(w)
}

// HandleCommentsGraph serves GET /comments_graph.
func (h *FeedHandler) HandleCommentsGraph(w http.ResponseWriter, r *http.Request) {
	h.graph(w, r, model.CounterComments, "Comments per day")
}

// HandleVisitsGraph serves GET /visits_graph.
func (h *FeedHandler) HandleVisitsGraph(w http.ResponseWriter, r *http.Request) {
	h.graph(w, r, model.CounterVisits, "Visits per day")
}

func (h *FeedHandler) graph(w http.ResponseWriter, r *http.Request, counter model.Counter, title string) {
	points, err := h.stats.Points(r.Context(), counter)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	png, err := chart.Render(title, points)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", chart.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
