// Package feed renders the site's posts as an RSS 2.0 document.
package feed

import (
	"fmt"
	"io"
	"time"

	"github.com/gorilla/feeds"

	"github.com/sakif/quill/internal/model"
)

// ContentType is sent with every feed response.
const ContentType = "application/rss+xml; charset=utf-8"

// Site describes the blog in the feed's channel element.
type Site struct {
	Title       string
	URL         string // absolute, without trailing slash
	Description string
}

// Build returns the feed for posts, which must already be newest first.
func Build(site Site, posts []model.Post) *feeds.Feed {
	f := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: site.URL + "/"},
		Description: site.Description,
	}
	if len(posts) > 0 {
		f.Created = posts[0].CreatedAt
	} else {
		f.Created = time.Now()
	}

	f.Items = make([]*feeds.Item, 0, len(posts))
	for _, p := range posts {
		link := fmt.Sprintf("%s/post/%d", site.URL, p.ID)
		item := &feeds.Item{
			Id:          link,
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: p.Description,
			Created:     p.CreatedAt,
		}
		if p.AuthorEmail != "" {
			item.Author = &feeds.Author{Email: p.AuthorEmail}
		}
		f.Items = append(f.Items, item)
	}
	return f
}

// WriteRSS writes the RSS encoding of posts to w.
func WriteRSS(w io.Writer, site Site, posts []model.Post) error {
	if err := Build(site, posts).WriteRss(w); err != nil {
		return fmt.Errorf("feed: writing rss: %w", err)
	}
	return nil
}
