package handler

import (
	"encoding/gob"
	"net/http"

	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const flashCookie = "flash"

func init() {
	// Flashes are stored as interface values
	gob.Register(views.Toast{})
}

// NewFlashStore returns the signed cookie store carrying toasts to the next
// page. Cookies that fail verification are discarded.
func NewFlashStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// setFlash queues toasts for the next page rendered for this visitor.
func (h *Handler) setFlash(w http.ResponseWriter, r *http.Request, toasts ...views.Toast) {
	flash, err := h.flashes.Get(r, flashCookie)
	if err != nil {
		h.log(r).Debug("Replacing unreadable flash", zap.Error(err))
	}

	// The request may already have consumed and expired this cookie
	opts := *h.flashes.Options
	flash.Options = &opts

	for _, t := range toasts {
		flash.AddFlash(t)
	}
	if err := flash.Save(r, w); err != nil {
		h.log(r).Error("Failed to save flash", zap.Error(err))
	}
}

// takeFlash returns the queued toasts and clears them.
func (h *Handler) takeFlash(w http.ResponseWriter, r *http.Request) []views.Toast {
	if _, err := r.Cookie(flashCookie); err != nil {
		return nil
	}

	flash, err := h.flashes.Get(r, flashCookie)
	if err != nil {
		h.log(r).Warn("Discarding unverifiable flash", zap.Error(err))
	}

	var toasts []views.Toast
	for _, v := range flash.Flashes() {
		if t, ok := v.(views.Toast); ok {
			toasts = append(toasts, t)
		}
	}

	flash.Options.MaxAge = -1
	if err := flash.Save(r, w); err != nil {
		h.log(r).Error("Failed to clear flash", zap.Error(err))
	}
	return toasts
}
