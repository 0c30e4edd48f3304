package validation

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	if err := ValidateText("title", "  ", 10); err == nil || err.Error() != "title is required" {
		t.Errorf("blank value: got %v", err)
	}
	if err := ValidateText("title", "Plage d'Étretat", 15); err != nil {
		t.Errorf("accented value counted in runes should pass: %v", err)
	}
	if err := ValidateText("title", strings.Repeat("a", 11), 10); err == nil {
		t.Error("value over max should fail")
	}
	if err := ValidateName("name", "Café de Flore"); err != nil {
		t.Errorf("ValidateName: %v", err)
	}
}

func TestParseZipcode(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"75001", 75001, false},
		{"01000", 1000, false},
		{"", 0, true},
		{"7500", 0, true},
		{"75OO1", 0, true},
		{"00000", 0, false},
		{"99999", 99999, false},
		{"-1234", 0, true},
		{"100000", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseZipcode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseZipcode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseZipcode(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidateZipcode(t *testing.T) {
	for _, zip := range []int{0, 1000, 75001, 99999} {
		if err := ValidateZipcode(zip); err != nil {
			t.Errorf("ValidateZipcode(%d) = %v", zip, err)
		}
	}
	for _, zip := range []int{-1, 100000} {
		if ValidateZipcode(zip) == nil {
			t.Errorf("ValidateZipcode(%d) should fail", zip)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	if err := ValidateLatitude("48.8566"); err != nil {
		t.Errorf("valid latitude: %v", err)
	}
	if err := ValidateLatitude("91"); err == nil {
		t.Error("latitude 91 should fail")
	}
	if err := ValidateLongitude("-179.99"); err != nil {
		t.Errorf("valid longitude: %v", err)
	}
	if err := ValidateLongitude("east"); err == nil {
		t.Error("non-numeric longitude should fail")
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("marie@example.fr"); err != nil {
		t.Errorf("valid email: %v", err)
	}
	if err := ValidateEmail("not-an-email"); err == nil {
		t.Error("invalid email should fail")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("short password should fail")
	}
	if err := ValidatePassword("mypassword-is-long"); err == nil {
		t.Error("common pattern should fail")
	}
	if err := ValidatePassword("correct horse battery"); err != nil {
		t.Errorf("strong password: %v", err)
	}
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("main_picture", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = req.ParseMultipartForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["main_picture"][0]
}

func TestValidateFile(t *testing.T) {
	if err := ValidateFile(fileHeader(t, "plage.png", pngHeader), ImageConstraints); err != nil {
		t.Errorf("png image rejected: %v", err)
	}
	if err := ValidateFile(fileHeader(t, "plage.txt", pngHeader), ImageConstraints); err == nil {
		t.Error("wrong extension accepted")
	}
	if err := ValidateFile(fileHeader(t, "plage.png", []byte("plain text")), ImageConstraints); err == nil {
		t.Error("text content with image extension accepted")
	}

	small := ImageConstraints.WithMaxSize(4)
	if err := ValidateFile(fileHeader(t, "plage.png", pngHeader), small); err == nil {
		t.Error("oversized file accepted")
	}
}
