package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vgmedical/surgiverify/internal/cases"
	"github.com/vgmedical/surgiverify/internal/config"
	"github.com/vgmedical/surgiverify/internal/equivalence"
	"github.com/vgmedical/surgiverify/internal/storage"
	"github.com/vgmedical/surgiverify/internal/textract"
	"github.com/vgmedical/surgiverify/internal/verify"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemory()
	engine := verify.NewEngine(store, log)
	processor := cases.NewProcessor(store, engine, textract.Options{}, log)
	manager := equivalence.NewManager(store)
	cfg := config.Config{APIKey: "test-key", MaxUploadBytes: 1 << 20}
	return NewServer(processor, engine, manager, store, log, cfg)
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/equivalences", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401 without token", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/equivalences", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401 with wrong token", rec.Code)
	}
}

func TestAddEquivalence(t *testing.T) {
	srv := testServer(t)

	body := `{"canonical_name":"Tornillo Encefálico","aliases":["Tornillo Craneal"],"submitter":"reviewer@vg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/equivalences", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, expected 201: %s", rec.Code, rec.Body.String())
	}
	var entry struct {
		CanonicalName string   `json:"canonical_name"`
		Aliases       []string `json:"aliases"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.CanonicalName != "tornillo encefalico" {
		t.Errorf("canonical = %q, expected normalized name", entry.CanonicalName)
	}
	if len(entry.Aliases) != 1 {
		t.Errorf("aliases = %v, expected one", entry.Aliases)
	}
}

func TestSuggestEquivalencesRequiresTwoNames(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/equivalences/suggest", strings.NewReader(`{"names":["solo"]}`))
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestGetCaseNotFound(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/nope", nil)
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func TestCreateCaseMissingDocuments(t *testing.T) {
	srv := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("baseline", "acta.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("PACIENTE: Juan Pérez\nTornillo (1)\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/cases", &buf)
	req.Header.Set("Authorization", "Bearer test-key")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for one document, body %s", rec.Code, rec.Body.String())
	}
}

func TestExtractEndpoint(t *testing.T) {
	srv := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("variant", "baseline")
	fw, err := mw.CreateFormFile("file", "acta.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("PACIENTE: Juan Pérez\nID: 12345678\nTornillo encefalico (2) REF: ABC123 LOT: DEF456 [UDI]\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Authorization", "Bearer test-key")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		PatientID string `json:"patient_id"`
		LineItems []struct {
			RefCode string `json:"ref_code"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.PatientID != "12345678" {
		t.Errorf("patient id = %q, expected 12345678", out.PatientID)
	}
	if len(out.LineItems) != 1 || out.LineItems[0].RefCode != "ABC123" {
		t.Errorf("line items = %+v, expected one with REF ABC123", out.LineItems)
	}
}
