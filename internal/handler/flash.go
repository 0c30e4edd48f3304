package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/osouvenir/souvenirs/internal/ui"
)

const flashCookieName = "flash"

func setFlash(w http.ResponseWriter, kind ui.FlashKind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(string(kind) + ":" + message)),
		Path:     "/back/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash returns the pending flash message, if any, and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) *ui.Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Path:     "/back/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), ":")
	if !ok || message == "" {
		return nil
	}
	switch ui.FlashKind(kind) {
	case ui.FlashSuccess, ui.FlashError:
		return &ui.Flash{Kind: ui.FlashKind(kind), Message: message}
	}
	return nil
}
