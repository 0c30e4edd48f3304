package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/osouvenir/souvenirs/internal/ctxkeys"
)

// SecurityHeaders sets the usual hardening headers. HTML responses get a CSP
// allowing only nonce-tagged inline styles; pictures may come from S3.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		if !strings.HasPrefix(r.URL.Path, "/api/") {
			imgSrc := "'self' data:"
			if cfg != nil && cfg.S3Endpoint != "" {
				imgSrc += " " + cfg.S3Endpoint
			} else if cfg != nil && cfg.StorageDriver == "s3" {
				imgSrc += " https://*.amazonaws.com"
			}
			h.Set("Content-Security-Policy", fmt.Sprintf(
				"default-src 'self'; script-src 'self'; style-src 'self' 'nonce-%s'; img-src %s; form-action 'self'; frame-ancestors 'none'; base-uri 'self'",
				GetNonce(r.Context()), imgSrc,
			))
		}

		next.ServeHTTP(w, r)
	})
}
