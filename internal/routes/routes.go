package routes

import (
	"io/fs"
	"net/http"

	"github.com/osouvenir/souvenirs/internal/app"
	"github.com/osouvenir/souvenirs/internal/handler"
	"github.com/osouvenir/souvenirs/internal/middleware"
	"github.com/osouvenir/souvenirs/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	memory := handler.NewMemoryHandler(app.MemoryService)
	picture := handler.NewPictureHandler(app.PictureService, app.Cfg.MaxUploadSize)
	place := handler.NewPlaceHandler(app.PlaceService)
	location := handler.NewLocationHandler(app.LocationService)

	mux := http.NewServeMux()
	loginLimiter := middleware.RateLimitLogin()

	// ============================================================================
	// UPLOADS
	// ============================================================================

	if local, ok := app.Storage.(*storage.LocalStorage); ok {
		prefix := app.Cfg.UploadsURLPrefix + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(noListing{http.Dir(local.Dir())})))
	}

	// ============================================================================
	// API (JSON, bearer token)
	// ============================================================================

	mux.HandleFunc("POST /api/login_check", loginLimiter(auth.LoginCheck))

	// Memories
	mux.HandleFunc("GET /api/memories", memory.List)
	mux.HandleFunc("GET /api/memory/{id}", memory.Read)
	mux.HandleFunc("POST /api/secure/create/memory", middleware.RequireAPIUser(memory.Create))
	mux.HandleFunc("POST /api/secure/create/memory-and-place", middleware.RequireAPIUser(memory.CreateWithPlace))
	mux.HandleFunc("POST /api/secure/create/memory-and-location-and-place", middleware.RequireAPIUser(memory.CreateWithLocationAndPlace))
	mux.HandleFunc("PUT /api/secure/update/memory/{id}", middleware.RequireAPIUser(memory.Update))
	mux.HandleFunc("PUT /api/secure/update/memory-and-place/{id}", middleware.RequireAPIUser(memory.UpdateWithPlace))
	mux.HandleFunc("DELETE /api/secure/delete/memory/{id}", middleware.RequireAPIUser(memory.Delete))

	// Pictures
	mux.HandleFunc("GET /api/pictures", picture.List)
	mux.HandleFunc("GET /api/picture/{id}", picture.Read)
	mux.HandleFunc("POST /api/secure/create/picture", middleware.RequireAPIUser(picture.Create))
	mux.HandleFunc("POST /api/secure/upload_update/main_picture/{id}", middleware.RequireAPIUser(picture.UploadMainPicture))
	mux.HandleFunc("POST /api/secure/upload/additional_pictures/{id}", middleware.RequireAPIUser(picture.UploadAdditionalPictures))
	mux.HandleFunc("PUT /api/secure/update/picture/{id}", middleware.RequireAPIUser(picture.Update))
	mux.HandleFunc("DELETE /api/secure/delete/picture/{id}", middleware.RequireAPIUser(picture.Delete))

	// Places
	mux.HandleFunc("GET /api/places", place.List)
	mux.HandleFunc("GET /api/place/{id}", place.Read)
	mux.HandleFunc("POST /api/create/place", place.Create)
	mux.HandleFunc("PUT /api/update/place/{id}", place.Update)
	mux.HandleFunc("DELETE /api/delete/place/{id}", place.Delete)

	// ============================================================================
	// BACK OFFICE (HTML, admin cookie)
	// ============================================================================

	mux.HandleFunc("GET /back/login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /back/login", loginLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /back/logout", auth.Logout)

	mux.HandleFunc("GET /back/location/{$}", middleware.RequireAdmin(location.Index))
	mux.HandleFunc("GET /back/location/new", middleware.RequireAdmin(location.NewPage))
	mux.HandleFunc("POST /back/location/new", middleware.RequireAdmin(location.Create))
	mux.HandleFunc("GET /back/location/{id}", middleware.RequireAdmin(location.Show))
	mux.HandleFunc("POST /back/location/{id}", middleware.RequireAdmin(location.Delete))
	mux.HandleFunc("GET /back/location/{id}/edit", middleware.RequireAdmin(location.EditPage))
	mux.HandleFunc("POST /back/location/{id}/edit", middleware.RequireAdmin(location.Update))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg),  // needed by SecurityHeaders and CSRF cookie flags
		middleware.NonceMiddleware,  // must run before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,   // skips /api/
		middleware.AuthMiddleware(app.AuthService),
		middleware.WithURLPath,
	)
}

// noListing hides directory indexes from the uploads file server.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
