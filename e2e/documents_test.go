package e2e

import (
	"net/http"
	"strings"
	"testing"
)

func TestDocumentUpload_Text(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "water-cycle.txt", "text/plain", []byte("Water evaporates, forms clouds and falls as rain.\n"), "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	doc := parseJSON(t, resp)

	if doc["title"] != "water-cycle" {
		t.Errorf("expected title from filename, got %v", doc["title"])
	}
	if doc["content"] != "Water evaporates, forms clouds and falls as rain." {
		t.Errorf("unexpected content: %q", doc["content"])
	}
	if doc["filename"] != "water-cycle.txt" {
		t.Errorf("unexpected filename: %v", doc["filename"])
	}

	// the document feeds song generation
	body := `{"content":"` + lessonContent + `","style":"traditional","complexity":"simple","documentId":"` + doc["id"].(string) + `"}`
	song := generateSong(t, ta, body)
	if song["sourceDocumentId"] != doc["id"] {
		t.Errorf("expected sourceDocumentId %v, got %v", doc["id"], song["sourceDocumentId"])
	}
}

func TestDocumentUpload_Rejected(t *testing.T) {
	ta := setupApp(t)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
	}{
		{"unsupported type", "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
		{"empty text", "blank.txt", "text/plain", []byte("   \n\t ")},
		{"corrupt pdf", "lesson.pdf", "application/pdf", []byte("%PDF-1.4\ngarbage")},
		{"too large", "big.txt", "text/plain", []byte(strings.Repeat("a", 1024*1024+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doUpload(t, ta.app, tt.filename, tt.contentType, tt.data, "")
			assertStatus(t, resp, http.StatusBadRequest)
			assertErrorCode(t, parseJSON(t, resp), "VALIDATION_ERROR")
		})
	}
}

func TestDocumentUpload_MissingFile(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/documents/upload", `{}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestDocuments_CreateListDelete(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/documents", `{"title":"Fractions","content":"A fraction names a part of a whole."}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	doc := parseJSON(t, resp)
	docID := doc["id"].(string)

	resp, err = doRequest(ta.app, http.MethodPost, "/api/documents", `{"title":"","content":"short"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	readBody(t, resp)

	resp, err = doRequest(ta.app, http.MethodGet, "/api/documents", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	list := parseJSON(t, resp)
	if docs, _ := list["documents"].([]interface{}); len(docs) != 1 {
		t.Fatalf("expected 1 document, got %v", list["documents"])
	}

	resp, err = doRequest(ta.app, http.MethodGet, "/api/documents/"+docID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp); got["title"] != "Fractions" {
		t.Errorf("expected title 'Fractions', got %v", got["title"])
	}

	resp, err = doRequest(ta.app, http.MethodDelete, "/api/documents/"+docID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNoContent)

	resp, err = doRequest(ta.app, http.MethodDelete, "/api/documents/"+docID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}
