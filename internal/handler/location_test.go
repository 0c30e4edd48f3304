package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

// adminSession logs an administrator into the back office and returns the auth cookie.
func adminSession(t *testing.T, s *testServer) *http.Cookie {
	t.Helper()
	s.user(t, "admin@example.fr", true)

	rec := s.form(t, "/back/login", url.Values{
		"email":    {"admin@example.fr"},
		"password": {testPassword},
		"next":     {"/back/location/"},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/back/location/" {
		t.Fatalf("login: %d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	auth := cookie(rec, "auth_token")
	if auth == nil || auth.Value == "" {
		t.Fatal("login set no auth cookie")
	}
	return auth
}

func (s *testServer) page(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return s.do(r)
}

func TestBackOfficeRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.page(t, "/back/location/")
	if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/back/login") {
		t.Fatalf("anonymous: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	s.user(t, "jean@example.fr", false)
	rec = s.form(t, "/back/login", url.Values{"email": {"jean@example.fr"}, "password": {testPassword}})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non admin login: %d", rec.Code)
	}

	rec = s.form(t, "/back/login", url.Values{"email": {"jean@example.fr"}, "password": {"wrong password here"}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", rec.Code)
	}

	// API bearer tokens do not open the back office
	token := s.token(t, "jean@example.fr")
	r := httptest.NewRequest("GET", "/back/location/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if rec := s.do(r); rec.Code != http.StatusSeeOther {
		t.Errorf("bearer on back office: %d", rec.Code)
	}
}

func TestLocationBackOffice(t *testing.T) {
	s := newTestServer(t)
	auth := adminSession(t, s)

	rec := s.page(t, "/back/location/new", auth)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="_token"`) {
		t.Fatalf("new page: %d", rec.Code)
	}

	fields := url.Values{
		"area":       {"Auvergne-Rhône-Alpes"},
		"department": {"Ain"},
		"street":     {"1 place de la Grenouillère"},
		"city":       {"bourg-en-bresse"},
		"zipcode":    {"01000"},
		"latitude":   {"46.2052"},
		"longitude":  {"5.2255"},
	}

	bad := url.Values{}
	for k, v := range fields {
		bad[k] = v
	}
	bad.Set("latitude", "123")
	rec = s.form(t, "/back/location/new", bad, auth)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "bourg-en-bresse") {
		t.Errorf("invalid form: %d", rec.Code)
	}

	rec = s.form(t, "/back/location/new", fields, auth)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	flash := cookie(rec, "flash")
	if flash == nil {
		t.Fatal("create set no flash")
	}

	rec = s.page(t, "/back/location/", auth, flash)
	body := rec.Body.String()
	if !strings.Contains(body, "La localite a bien ete ajoutee") {
		t.Error("flash message not shown")
	}
	if !strings.Contains(body, "Bourg") || !strings.Contains(body, "01000") {
		t.Errorf("index does not list the location: %s", body)
	}

	locations, err := s.app.LocationService.Locations(t.Context())
	if err != nil || len(locations) != 1 {
		t.Fatalf("locations = %v, %v", locations, err)
	}
	id := strconv.FormatInt(locations[0].ID, 10)

	rec = s.page(t, "/back/location/"+id, auth)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Grenouillère") {
		t.Errorf("show: %d", rec.Code)
	}

	fields.Set("street", "2 place de la Grenouillère")
	rec = s.form(t, "/back/location/"+id+"/edit", fields, auth)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("edit: %d %s", rec.Code, rec.Body)
	}
	updated, _ := s.app.LocationService.Location(t.Context(), locations[0].ID)
	if updated.Street != "2 place de la Grenouillère" {
		t.Errorf("street = %q", updated.Street)
	}

	rec = s.form(t, "/back/location/"+id, url.Values{}, auth)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete: %d", rec.Code)
	}
	if _, err := s.app.LocationService.Location(t.Context(), locations[0].ID); err == nil {
		t.Error("location still exists after delete")
	}

	rec = s.page(t, "/back/location/"+id, auth)
	if rec.Code != http.StatusNotFound {
		t.Errorf("show deleted: %d", rec.Code)
	}
}

func TestLocationDeleteRequiresCSRFToken(t *testing.T) {
	s := newTestServer(t)
	auth := adminSession(t, s)
	location, _ := s.seedPlace(t, "Paris")

	r := httptest.NewRequest("POST", "/back/location/"+strconv.FormatInt(location.ID, 10), nil)
	r.AddCookie(auth)
	if rec := s.do(r); rec.Code != http.StatusForbidden {
		t.Errorf("delete without token: %d", rec.Code)
	}

	rec := s.form(t, "/back/location/"+strconv.FormatInt(location.ID, 10), url.Values{}, auth)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete: %d", rec.Code)
	}
	flash := cookie(rec, "flash")
	rec = s.page(t, "/back/location/", auth, flash)
	if !strings.Contains(rec.Body.String(), "encore utilisée") {
		t.Error("referenced location delete did not report an error")
	}
}
