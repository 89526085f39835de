package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSession = "quill_flash"

// Flasher stores one-time notices in a signed cookie so they survive the
// redirect that follows a form post.
type Flasher struct {
	store  *sessions.CookieStore
	logger *slog.Logger
}

func NewFlasher(secret []byte, secure bool, logger *slog.Logger) *Flasher {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flasher{store: store, logger: logger}
}

// Add queues msg for the next rendered page. Must be called before the
// response headers are written.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, msg string) {
	// A cookie that fails to decode yields a fresh session, which is fine.
	sess, _ := f.store.Get(r, flashSession)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		f.logger.Error("saving flash", slog.String("error", err.Error()))
	}
}

// Pop returns and clears the queued messages.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []string {
	sess, _ := f.store.Get(r, flashSession)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		f.logger.Error("clearing flashes", slog.String("error", err.Error()))
	}

	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
