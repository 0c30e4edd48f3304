package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/service"
)

func (s *testServer) memory(t *testing.T, user *model.User, mainPicture *string) *model.MemoryDetail {
	t.Helper()
	location, place := s.seedPlace(t, "Lyon")
	memory, err := s.app.MemoryService.Create(context.Background(), user,
		service.ExistingLocation{ID: location.ID},
		service.ReusePlace{ID: place.ID},
		service.MemoryInput{Title: "Fourvière", Content: "la basilique", PictureDate: place.CreatedAt, MainPicture: mainPicture},
	)
	if err != nil {
		t.Fatalf("create memory: %v", err)
	}
	return memory
}

func TestUploadMainPicture(t *testing.T) {
	s := newTestServer(t)
	owner := s.user(t, "owner@example.fr", false)
	other := s.user(t, "other@example.fr", false)
	ownerToken := s.token(t, owner.Email)
	otherToken := s.token(t, other.Email)

	memory := s.memory(t, owner, nil)
	path := "/api/secure/upload_update/main_picture/" + strconv.FormatInt(memory.Memory.ID, 10)

	rec := s.upload(t, path, otherToken, "photo.png", pngBytes)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "pas autorisé à ajouter") {
		t.Errorf("non owner: %d %s", rec.Code, rec.Body)
	}

	rec = s.upload(t, path, ownerToken, "notes.txt", []byte("hello"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("text upload status = %d", rec.Code)
	}

	rec = s.upload(t, path, ownerToken, "Photo.PNG", pngBytes)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Image téléchargée") {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "GET", "/api/memory/"+strconv.FormatInt(memory.Memory.ID, 10), "", nil)
	var got memoryResponse
	decode(t, rec, &got)
	if got.MainPicture == nil || !strings.HasSuffix(*got.MainPicture, ".png") {
		t.Fatalf("main_picture = %v", got.MainPicture)
	}
	if got.MainPictureURL != "/uploads/"+*got.MainPicture {
		t.Errorf("main_picture_url = %q", got.MainPictureURL)
	}
	if _, err := os.Stat(filepath.Join(s.uploads, *got.MainPicture)); err != nil {
		t.Errorf("uploaded file missing: %v", err)
	}

	served := s.do(httptest.NewRequest("GET", got.MainPictureURL, nil))
	if served.Code != http.StatusOK || served.Body.Len() != len(pngBytes) {
		t.Errorf("serving upload: %d (%d bytes)", served.Code, served.Body.Len())
	}

	first := *got.MainPicture
	rec = s.upload(t, path, ownerToken, "again.png", pngBytes)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace: %d %s", rec.Code, rec.Body)
	}
	if _, err := os.Stat(filepath.Join(s.uploads, first)); !os.IsNotExist(err) {
		t.Errorf("replaced picture still stored: %v", err)
	}

	rec = s.upload(t, path, ownerToken, "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Le souvenir a bien été mis à jour.") {
		t.Errorf("upload without file on memory with picture: %d %s", rec.Code, rec.Body)
	}
}

func TestUploadWithoutPictureReclaimsMemory(t *testing.T) {
	s := newTestServer(t)
	owner := s.user(t, "owner@example.fr", false)
	token := s.token(t, owner.Email)

	memory := s.memory(t, owner, nil)
	id := strconv.FormatInt(memory.Memory.ID, 10)

	rec := s.upload(t, "/api/secure/upload_update/main_picture/"+id, token, "", nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "image principale") {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "GET", "/api/memory/"+id, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("memory still readable: %d", rec.Code)
	}
	rec = s.json(t, "GET", "/api/place/"+strconv.FormatInt(memory.Place.ID, 10), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("orphan place kept: %d", rec.Code)
	}

	rec = s.upload(t, "/api/secure/upload_update/main_picture/"+id, token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("upload on removed memory: %d", rec.Code)
	}
}

func TestPictureEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.user(t, "owner@example.fr", false)
	other := s.user(t, "other@example.fr", false)
	ownerToken := s.token(t, owner.Email)
	otherToken := s.token(t, other.Email)

	memory := s.memory(t, owner, nil)
	memoryRef := map[string]int64{"id": memory.Memory.ID}

	rec := s.json(t, "POST", "/api/secure/create/picture", ownerToken, map[string]any{
		"memory":  memoryRef,
		"picture": "https://img.example.fr/p.jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var created struct {
		Message string `json:"message"`
		Picture struct {
			ID     int64 `json:"id"`
			Memory struct {
				ID int64 `json:"id"`
			} `json:"memory"`
		} `json:"picture"`
	}
	decode(t, rec, &created)
	if created.Message != "Photo enregistrée" || created.Picture.Memory.ID != memory.Memory.ID {
		t.Errorf("created = %+v", created)
	}
	pid := strconv.FormatInt(created.Picture.ID, 10)

	rec = s.json(t, "POST", "/api/secure/create/picture", ownerToken, `{"memory": {"id": 999}, "picture": "x"}`)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Le souvenir associé n'existe pas") {
		t.Errorf("create on missing memory: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "GET", "/api/picture/"+pid, "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("read: %d", rec.Code)
	}
	rec = s.json(t, "GET", "/api/picture/999", "", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Photo inexistante") {
		t.Errorf("read missing: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "PUT", "/api/secure/update/picture/"+pid, otherToken, map[string]any{"memory": memoryRef, "picture": "https://img.example.fr/q.jpg"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("update by other user: %d", rec.Code)
	}
	rec = s.json(t, "PUT", "/api/secure/update/picture/999", ownerToken, map[string]any{"memory": memoryRef, "picture": "https://img.example.fr/q.jpg"})
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "La photo n'existe pas") {
		t.Errorf("update missing: %d %s", rec.Code, rec.Body)
	}
	rec = s.json(t, "PUT", "/api/secure/update/picture/"+pid, ownerToken, map[string]any{"memory": memoryRef, "picture": "https://img.example.fr/q.jpg"})
	if rec.Code != http.StatusOK {
		t.Errorf("update: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "DELETE", "/api/secure/delete/picture/"+pid, otherToken, nil)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "supprimer cette photo") {
		t.Errorf("delete by other user: %d %s", rec.Code, rec.Body)
	}
	rec = s.json(t, "DELETE", "/api/secure/delete/picture/"+pid, ownerToken, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Photo supprimée") {
		t.Errorf("delete: %d %s", rec.Code, rec.Body)
	}

	rec = s.json(t, "POST", "/api/secure/upload/additional_pictures/"+strconv.FormatInt(memory.Memory.ID, 10), ownerToken, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "suplémentaire") {
		t.Errorf("additional pictures: %d %s", rec.Code, rec.Body)
	}
}
