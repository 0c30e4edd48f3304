package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/osouvenir/souvenirs/internal/app"
	"github.com/osouvenir/souvenirs/internal/config"
	"github.com/osouvenir/souvenirs/internal/db/dbtest"
	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/routes"
	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/osouvenir/souvenirs/internal/storage"
)

const testPassword = "correct horse battery"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testServer struct {
	app     *app.App
	handler http.Handler
	uploads string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppName:          "O'Souvenir",
		AppEnv:           "test",
		JWTSecret:        "handler-test-secret-handler-test-secret",
		JWTExpiry:        time.Hour,
		MaxUploadSize:    1 << 20,
		StorageDriver:    config.StorageLocal,
		UploadsURLPrefix: "/uploads",
	}

	uploads := t.TempDir()
	local, err := storage.NewLocalStorage(uploads, cfg.UploadsURLPrefix)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	a := app.Wire(cfg, dbtest.New(t), local)
	return &testServer{app: a, handler: routes.SetupRoutes(a), uploads: uploads}
}

func (s *testServer) user(t *testing.T, email string, admin bool) *model.User {
	t.Helper()
	user, err := s.app.UserService.Create(context.Background(), service.UserInput{
		Email:     email,
		Firstname: "Jean",
		Lastname:  "Dupont",
		Password:  testPassword,
		Admin:     admin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// token logs in through the API and returns the bearer token.
func (s *testServer) token(t *testing.T, email string) string {
	t.Helper()
	rec := s.json(t, "POST", "/api/login_check", "", map[string]string{
		"username": email,
		"password": testPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login_check status = %d body = %s", rec.Code, rec.Body)
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, rec, &out)
	if out.Token == "" {
		t.Fatal("login_check returned no token")
	}
	return out.Token
}

func (s *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	return rec
}

// json sends body (marshalled unless it is a string) with an optional bearer token.
func (s *testServer) json(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(r)
}

func (s *testServer) upload(t *testing.T, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("main_picture", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(content)
	}
	mw.Close()

	r := httptest.NewRequest("POST", path, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token)
	return s.do(r)
}

// form posts an HTML form with the given cookies, adding the CSRF token.
func (s *testServer) form(t *testing.T, path string, values url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	const csrf = "Pz3v2h1bq6S8x0n4Yd7kW5mJtR9cL2aQeF8uH1oI3sA"
	values.Set("_token", csrf)

	r := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrf})
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return s.do(r)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	err := json.Unmarshal(rec.Body.Bytes(), v)
	if err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// seedLocation creates a location and a place on it through the services.
func (s *testServer) seedPlace(t *testing.T, city string) (*model.Location, *model.Place) {
	t.Helper()
	ctx := context.Background()
	location, err := s.app.LocationService.Create(ctx, service.LocationInput{
		Area:       "Île-de-France",
		Department: "Paris",
		Street:     "1 rue de Rivoli",
		City:       city,
		Zipcode:    75001,
		Latitude:   "48.8606",
		Longitude:  "2.3376",
	})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	place, err := s.app.PlaceService.Create(ctx, service.PlaceInput{
		LocationID: location.ID,
		Name:       "Le Louvre",
		Type:       "musée",
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	return location, place
}

