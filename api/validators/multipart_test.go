package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
)

func multipartRequest(t *testing.T, files map[string][]byte, extra map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/console/forms/f/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadStagedFilesCollectsFileParts(t *testing.T) {
	req := multipartRequest(t, map[string][]byte{"a.png": []byte("aaaa")}, map[string]string{"note": "ignored"})

	files, err := ReadStagedFiles(req, 16)
	if err != nil {
		t.Fatalf("ReadStagedFiles returned error: %v", err)
	}
	if len(files) != 1 || files[0].Name != "a.png" || string(files[0].Data) != "aaaa" {
		t.Fatalf("unexpected files %+v", files)
	}
}

func TestReadStagedFilesRejectsOversizedFile(t *testing.T) {
	req := multipartRequest(t, map[string][]byte{"big.png": bytes.Repeat([]byte("x"), 32)}, nil)

	_, err := ReadStagedFiles(req, 16)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadStagedFilesRequiresAFile(t *testing.T) {
	req := multipartRequest(t, nil, map[string]string{"note": "x"})

	_, err := ReadStagedFiles(req, 16)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadStagedFilesRejectsNonMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	if _, err := ReadStagedFiles(req, 16); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
