package handler

import (
	"net/http"
	"strings"

	"github.com/osouvenir/souvenirs/internal/ui"
)

func NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"code":    http.StatusNotFound,
			"message": "Not Found",
		})
		return
	}
	ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
}
