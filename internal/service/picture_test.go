package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/osouvenir/souvenirs/internal/repository"
)

func TestUploadMainPictureStoresGeneratedName(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	m := e.memory(t, owner, place, loc, strPtr("previous.png"))
	e.storage.files["previous.png"] = []byte("old")

	got, err := e.pictures.UploadMainPicture(e.ctx, owner, m.ID, pngUpload("Vacances Été.PNG"))
	if err != nil {
		t.Fatalf("UploadMainPicture: %v", err)
	}

	name := *got.MainPicture
	if !strings.HasSuffix(name, ".png") || strings.Contains(name, "Vacances") || len(name) != 36+len(".png") {
		t.Errorf("stored name = %q, want <uuid>.png", name)
	}
	if !e.storage.has(name) {
		t.Error("file not saved to storage")
	}
	if e.storage.has("previous.png") {
		t.Error("replaced main picture should be removed from storage")
	}

	stored, err := e.store.Memories.ByID(e.ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.MainPicture == nil || *stored.MainPicture != name {
		t.Errorf("memory main_picture = %v, want %q", stored.MainPicture, name)
	}
}

func TestUploadMainPictureKeepsFileStillUsedByAnotherMemory(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	a := e.memory(t, owner, place, loc, nil)
	b := e.memory(t, owner, place, loc, nil)

	uploaded, err := e.pictures.UploadMainPicture(e.ctx, owner, a.ID, pngUpload("a.png"))
	if err != nil {
		t.Fatalf("UploadMainPicture(a): %v", err)
	}
	shared := *uploaded.MainPicture

	_, err = e.memories.Update(e.ctx, b.ID, MemoryPatch{MainPicture: &shared})
	if err != nil {
		t.Fatalf("point b at a's file: %v", err)
	}

	replaced, err := e.pictures.UploadMainPicture(e.ctx, owner, b.ID, pngUpload("b.png"))
	if err != nil {
		t.Fatalf("UploadMainPicture(b): %v", err)
	}
	if !e.storage.has(shared) {
		t.Errorf("%s removed while memory %d still uses it", shared, a.ID)
	}

	// Once nobody else refers to it, replacing a's picture removes the file.
	_, err = e.pictures.UploadMainPicture(e.ctx, owner, a.ID, pngUpload("c.png"))
	if err != nil {
		t.Fatalf("UploadMainPicture(a) again: %v", err)
	}
	if e.storage.has(shared) {
		t.Errorf("%s should be removed once unreferenced", shared)
	}
	if !e.storage.has(*replaced.MainPicture) {
		t.Error("b's new picture should be kept")
	}
}

func TestUploadMainPictureRejectsOtherUsers(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	intruder := e.user(t, "intruder@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	m := e.memory(t, owner, place, loc, nil)

	_, err := e.pictures.UploadMainPicture(e.ctx, intruder, m.ID, pngUpload("a.png"))
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("error = %v, want ErrNotOwner", err)
	}
	if len(e.storage.files) != 0 {
		t.Error("nothing should be stored for a rejected upload")
	}

	_, err = e.pictures.UploadMainPicture(e.ctx, owner, 404, pngUpload("a.png"))
	if !errors.Is(err, repository.ErrMemoryNotFound) {
		t.Errorf("missing memory error = %v", err)
	}
}

func TestUploadMainPictureStorageFailureLeavesMemoryUnchanged(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	m := e.memory(t, owner, place, loc, nil)

	e.storage.saveFn = func(string) error { return errors.New("disk full") }

	_, err := e.pictures.UploadMainPicture(e.ctx, owner, m.ID, pngUpload("a.png"))
	if err == nil {
		t.Fatal("expected storage error")
	}

	stored, err := e.store.Memories.ByID(e.ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.MainPicture != nil {
		t.Errorf("main_picture = %q, want NULL", *stored.MainPicture)
	}
}

func TestDeletePictureRequiresOwner(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	intruder := e.user(t, "intruder@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	m := e.memory(t, owner, place, loc, nil)
	pic := e.picture(t, m, "https://img.example/1.jpg")

	err := e.pictures.Delete(e.ctx, intruder, pic.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("intruder delete error = %v, want ErrNotOwner", err)
	}
	if !e.pictureExists(t, pic.ID) {
		t.Fatal("picture deleted by non-owner")
	}

	err = e.pictures.Delete(e.ctx, owner, pic.ID)
	if err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if e.pictureExists(t, pic.ID) {
		t.Error("picture still present")
	}

	err = e.pictures.Delete(e.ctx, owner, pic.ID)
	if !errors.Is(err, repository.ErrPictureNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestUpdatePictureChecksBothMemories(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	other := e.user(t, "other@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	m := e.memory(t, owner, place, loc, nil)
	m2 := e.memory(t, owner, place, loc, nil)
	foreign := e.memory(t, other, place, loc, nil)
	pic := e.picture(t, m, "https://img.example/1.jpg")

	_, err := e.pictures.Update(e.ctx, owner, pic.ID, foreign.ID, "https://img.example/2.jpg")
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("moving into a foreign memory error = %v, want ErrNotOwner", err)
	}
	_, err = e.pictures.Update(e.ctx, other, pic.ID, foreign.ID, "https://img.example/2.jpg")
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("taking a foreign picture error = %v, want ErrNotOwner", err)
	}

	updated, err := e.pictures.Update(e.ctx, owner, pic.ID, m2.ID, "https://img.example/2.jpg")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MemoryID != m2.ID || updated.Picture != "https://img.example/2.jpg" || updated.UpdatedAt == nil {
		t.Errorf("updated picture = %+v", updated)
	}

	_, err = e.pictures.Update(e.ctx, owner, 404, m2.ID, "https://img.example/2.jpg")
	if !errors.Is(err, repository.ErrPictureNotFound) {
		t.Errorf("missing picture error = %v", err)
	}
}

func TestCreatePictureNeedsExistingMemory(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner@example.fr")
	loc := e.location(t, "Paris")
	place := e.place(t, loc, "Louvre")
	m := e.memory(t, owner, place, loc, nil)

	_, err := e.pictures.Create(e.ctx, 404, "https://img.example/1.jpg")
	if !errors.Is(err, repository.ErrMemoryNotFound) {
		t.Errorf("error = %v, want ErrMemoryNotFound", err)
	}

	pic, err := e.pictures.Create(e.ctx, m.ID, "https://img.example/1.jpg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pic.ID == 0 || pic.MemoryID != m.ID {
		t.Errorf("picture = %+v", pic)
	}
}
