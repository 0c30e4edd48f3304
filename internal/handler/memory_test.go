package handler_test

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
)

type memoryResponse struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	MainPicture    *string `json:"main_picture"`
	MainPictureURL string  `json:"main_picture_url"`
	Location       struct {
		ID      int64  `json:"id"`
		City    string `json:"city"`
		Zipcode int    `json:"zipcode"`
	} `json:"location"`
	Place struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"place"`
	User struct {
		ID    int64    `json:"id"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	} `json:"user"`
	Pictures []struct {
		ID      int64  `json:"id"`
		Picture string `json:"picture"`
	} `json:"pictures"`
}

func listMemories(t *testing.T, s *testServer) []memoryResponse {
	t.Helper()
	rec := s.json(t, "GET", "/api/memories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var out []memoryResponse
	decode(t, rec, &out)
	return out
}

func TestCreateMemoryWithNewLocationAndPlace(t *testing.T) {
	s := newTestServer(t)
	user := s.user(t, "jean@example.fr", false)
	token := s.token(t, user.Email)

	rec := s.json(t, "POST", "/api/secure/create/memory-and-location-and-place", token, `{
		"user": {"id": 999},
		"location": {"area": "Île-de-France", "department": "Paris", "district": null,
			"street": "55 rue du Faubourg Saint-Honoré", "city": "paris", "zipcode": "75008",
			"latitude": "48.8704", "longitude": "2.3167"},
		"place": {"name": "l'Élysée", "type": "bâtiment"},
		"memory": {"title": "L'Élysée en 1990", "content": "que de souvenirs",
			"picture_date": "1990-02-08T14:00:00Z", "main_picture": "https://img.example.fr/a.jpg",
			"additional_pictures": ["https://img.example.fr/b.jpg", "https://img.example.fr/c.jpg"]}
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Souvenir créé") {
		t.Errorf("body = %s", rec.Body)
	}

	memories := listMemories(t, s)
	if len(memories) != 1 {
		t.Fatalf("got %d memories", len(memories))
	}
	m := memories[0]
	if m.User.ID != user.ID {
		t.Errorf("memory owned by %d, want acting user %d", m.User.ID, user.ID)
	}
	if m.Location.Zipcode != 75008 || m.Place.Name != "l'Élysée" || len(m.Pictures) != 2 {
		t.Errorf("memory = %+v", m)
	}
	if m.MainPictureURL != "https://img.example.fr/a.jpg" {
		t.Errorf("main_picture_url = %q", m.MainPictureURL)
	}
	if len(m.User.Roles) == 0 || m.User.Roles[len(m.User.Roles)-1] != "ROLE_USER" {
		t.Errorf("roles = %v", m.User.Roles)
	}
}

func TestCreateMemoryAndPlace(t *testing.T) {
	s := newTestServer(t)
	user := s.user(t, "jean@example.fr", false)
	token := s.token(t, user.Email)
	location, place := s.seedPlace(t, "Paris")

	reuse := `{"location": {"id": ` + strconv.FormatInt(location.ID, 10) + `},
		"place": {"create_new_place": false, "id": ` + strconv.FormatInt(place.ID, 10) + `},
		"memory": {"title": "Le Louvre", "content": "la pyramide", "picture_date": "1989-03-30"}}`
	rec := s.json(t, "POST", "/api/secure/create/memory-and-place", token, reuse)
	if rec.Code != http.StatusCreated {
		t.Fatalf("reuse status = %d body = %s", rec.Code, rec.Body)
	}

	create := `{"location": {"id": ` + strconv.FormatInt(location.ID, 10) + `},
		"place": {"create_new_place": true, "name": "Jardin des Tuileries", "type": "parc"},
		"memory": {"title": "Les Tuileries", "content": "la grande roue", "picture_date": "2001-07-14T10:00:00Z"}}`
	rec = s.json(t, "POST", "/api/secure/create/memory-and-place", token, create)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body)
	}

	memories := listMemories(t, s)
	if len(memories) != 2 {
		t.Fatalf("got %d memories", len(memories))
	}
	if memories[0].Place.ID != place.ID {
		t.Errorf("first memory place = %d, want reused %d", memories[0].Place.ID, place.ID)
	}
	if memories[1].Place.ID == place.ID || memories[1].Place.Name != "Jardin des Tuileries" {
		t.Errorf("second memory place = %+v", memories[1].Place)
	}

	missing := `{"location": {"id": 4242}, "place": {"create_new_place": false, "id": 1},
		"memory": {"title": "x", "content": "y", "picture_date": "2001-07-14"}}`
	rec = s.json(t, "POST", "/api/secure/create/memory-and-place", token, missing)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown location status = %d", rec.Code)
	}
	if len(listMemories(t, s)) != 2 {
		t.Error("failed create left a memory behind")
	}
}

func TestMemoryValidationErrors(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "jean@example.fr", false)
	token := s.token(t, "jean@example.fr")

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/secure/create/memory-and-place", `{"location": `},
		{"empty body", "/api/secure/create/memory-and-place", ``},
		{"missing memory", "/api/secure/create/memory-and-place", `{"location": {"id": 1}, "place": {"id": 1}}`},
		{"bad date", "/api/secure/create/memory-and-location-and-place", `{"location": {}, "place": {}, "memory": {"picture_date": "yesterday"}}`},
		{"bad zipcode", "/api/secure/create/memory-and-location-and-place", `{"location": {"zipcode": "ABCDE"}, "place": {}, "memory": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.json(t, "POST", tt.path, token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
			}
			var out map[string]string
			decode(t, rec, &out)
			if out["error"] == "" || out["detail"] == "" {
				t.Errorf("body = %v", out)
			}
		})
	}
}

func TestSecureRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{"POST", "/api/secure/create/memory"},
		{"PUT", "/api/secure/update/memory/1"},
		{"DELETE", "/api/secure/delete/memory/1"},
		{"POST", "/api/secure/upload_update/main_picture/1"},
		{"DELETE", "/api/secure/delete/picture/1"},
	} {
		rec := s.json(t, route.method, route.path, "", `{}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d", route.method, route.path, rec.Code)
		}
	}

	rec := s.json(t, "POST", "/api/secure/create/memory", "not.a.token", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", rec.Code)
	}
}

func TestReadUpdateDeleteMemory(t *testing.T) {
	s := newTestServer(t)
	user := s.user(t, "jean@example.fr", false)
	token := s.token(t, user.Email)
	location, place := s.seedPlace(t, "Paris")

	rec := s.json(t, "POST", "/api/secure/create/memory", token, map[string]any{
		"title":               "Le Louvre",
		"content":             "la pyramide",
		"picture_date":        "1989-03-30T12:00:00Z",
		"location":            map[string]int64{"id": location.ID},
		"place":               map[string]int64{"id": place.ID},
		"additional_pictures": []string{"https://img.example.fr/1.jpg"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body)
	}
	var created memoryResponse
	decode(t, rec, &created)
	path := "/api/memory/" + strconv.FormatInt(created.ID, 10)

	rec = s.json(t, "GET", path, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read status = %d", rec.Code)
	}

	rec = s.json(t, "GET", "/api/memory/999", "", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Erreur : Souvenir inexistant") {
		t.Errorf("missing memory: %d %s", rec.Code, rec.Body)
	}

	id := strconv.FormatInt(created.ID, 10)
	rec = s.json(t, "PUT", "/api/secure/update/memory/"+id, token, `{"title": "Le Louvre la nuit"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", rec.Code, rec.Body)
	}
	var updated memoryResponse
	decode(t, rec, &updated)
	if updated.Title != "Le Louvre la nuit" || updated.Place.ID != place.ID {
		t.Errorf("updated = %+v", updated)
	}

	picID := created.Pictures[0].ID
	rec = s.json(t, "PUT", "/api/secure/update/memory-and-place/"+id, token, map[string]any{
		"place": map[string]any{"update_place": true, "id": place.ID, "name": "Musée du Louvre", "type": "musée"},
		"memory": map[string]any{
			"additional_pictures": []map[string]any{
				{"id": picID, "URL_image": "https://img.example.fr/1-bis.jpg"},
				{"id": 4242, "URL_image": "https://img.example.fr/ghost.jpg"},
				{"URL_image": "https://img.example.fr/2.jpg"},
			},
		},
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Souvenir mis à jour") {
		t.Fatalf("update with place: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "GET", path, "", nil)
	var after memoryResponse
	decode(t, rec, &after)
	if after.Place.Name != "Musée du Louvre" {
		t.Errorf("place name = %q", after.Place.Name)
	}
	if len(after.Pictures) != 2 || after.Pictures[0].Picture != "https://img.example.fr/1-bis.jpg" {
		t.Errorf("pictures = %+v", after.Pictures)
	}

	rec = s.json(t, "DELETE", "/api/secure/delete/memory/"+id, token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Souvenir supprimé") {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body)
	}
	rec = s.json(t, "DELETE", "/api/secure/delete/memory/"+id, token, nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Le souvenir n'existe pas") {
		t.Errorf("second delete: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "GET", "/api/places", "", nil)
	if !strings.Contains(rec.Body.String(), "Musée du Louvre") {
		t.Error("memory delete removed its place")
	}
}
