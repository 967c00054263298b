package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vgmedical/surgiverify/internal/cases"
	"github.com/vgmedical/surgiverify/internal/record"
	"github.com/vgmedical/surgiverify/internal/storage"
	"github.com/vgmedical/surgiverify/internal/textract"
	"github.com/vgmedical/surgiverify/internal/verify"
)

// handleCreateCase accepts the three case documents as multipart files
// under the fields "baseline", "hospital" and "description", runs the
// full pipeline and returns the case with its report.
func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	// Three files plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*3+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var uploads []cases.Upload
	for _, variant := range record.Variants {
		file, header, err := r.FormFile(string(variant))
		if err != nil {
			continue // missing documents are counted by the processor
		}
		upload, err := s.readUpload(variant, file, header)
		file.Close()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		uploads = append(uploads, *upload)
	}

	c, rep, err := s.processor.ProcessCase(r.Context(), uploads)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"case":            c,
		"report":          rep,
		"status":          rep.OverallStatus(),
		"recommendations": verify.Recommendations(rep),
	})
}

func (s *Server) readUpload(variant record.Variant, file multipart.File, header *multipart.FileHeader) (*cases.Upload, error) {
	filename := sanitizeFilename(header.Filename)
	if !textract.IsSupportedExtension(filename) {
		return nil, &record.ExtractionError{Kind: filepath.Ext(filename), Err: fmt.Errorf("unsupported file type")}
	}
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", variant, err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%s file exceeds max size (%d bytes)", variant, s.cfg.MaxUploadBytes)
	}
	return &cases.Upload{Variant: variant, Filename: filename, Data: data}, nil
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	c, err := s.store.GetCase(r.Context(), caseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	rep, err := s.store.LoadReport(r.Context(), caseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"report":          rep,
		"status":          rep.OverallStatus(),
		"recommendations": verify.Recommendations(rep),
	})
}

// handleVerifyCase recomputes a case's report from its stored records,
// replacing the prior report.
func (s *Server) handleVerifyCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	if _, err := s.store.GetCase(r.Context(), caseID); err != nil {
		writeDomainError(w, err)
		return
	}
	rep, err := s.engine.VerifyCase(r.Context(), caseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"report":          rep,
		"status":          rep.OverallStatus(),
		"recommendations": verify.Recommendations(rep),
	})
}

// handleExtract runs a single document through extraction without
// creating a case. Useful for previewing what the extractor sees.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	variant := record.Variant(r.FormValue("variant"))
	if !variant.Valid() {
		jsonError(w, "variant must be one of: baseline, hospital, description", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	upload, err := s.readUpload(variant, file, header)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := s.processor.ExtractDocument(*upload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficient *record.InsufficientInputError
	var extraction *record.ExtractionError
	var verification *record.VerificationError
	switch {
	case errors.As(err, &insufficient):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &extraction):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, storage.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.As(err, &verification):
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
