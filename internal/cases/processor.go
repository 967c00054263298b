// Package cases runs the upload-to-report pipeline: text extraction,
// field extraction, persistence and verification for a surgical case's
// three documents.
package cases

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vgmedical/surgiverify/internal/extract"
	"github.com/vgmedical/surgiverify/internal/metrics"
	"github.com/vgmedical/surgiverify/internal/record"
	"github.com/vgmedical/surgiverify/internal/storage"
	"github.com/vgmedical/surgiverify/internal/textract"
	"github.com/vgmedical/surgiverify/internal/verify"
)

// Upload is one document file submitted for a case.
type Upload struct {
	Variant  record.Variant
	Filename string
	Data     []byte
}

// Processor orchestrates the full case pipeline.
type Processor struct {
	store        storage.Storage
	engine       *verify.Engine
	textractOpts textract.Options
	log          *slog.Logger
}

func NewProcessor(store storage.Storage, engine *verify.Engine, opts textract.Options, log *slog.Logger) *Processor {
	return &Processor{store: store, engine: engine, textractOpts: opts, log: log}
}

// ProcessCase ingests the three documents of a new case and verifies
// them. All three variants must be present exactly once; anything else
// is an InsufficientInputError before any work happens.
func (p *Processor) ProcessCase(ctx context.Context, uploads []Upload) (*record.Case, *record.VerificationReport, error) {
	if len(uploads) != 3 {
		return nil, nil, &record.InsufficientInputError{What: "documents", Required: 3, Found: len(uploads)}
	}
	seen := make(map[record.Variant]bool, 3)
	for _, u := range uploads {
		if !u.Variant.Valid() || seen[u.Variant] {
			return nil, nil, &record.InsufficientInputError{What: "distinct document variants", Required: 3, Found: len(seen)}
		}
		seen[u.Variant] = true
	}

	// Extract everything before touching storage, so a failing document
	// leaves no orphaned case or partial record set behind.
	records := make([]record.Record, 0, 3)
	for _, u := range uploads {
		rec, err := p.ExtractDocument(u)
		if err != nil {
			metrics.CasesProcessedTotal.WithLabelValues("extraction_failed").Inc()
			return nil, nil, err
		}
		records = append(records, *rec)
	}

	c := &record.Case{
		ID:         uuid.NewString(),
		CaseNumber: newCaseNumber(),
		CreatedAt:  time.Now(),
	}
	if err := p.store.CreateCase(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("create case: %w", err)
	}
	for i := range records {
		if err := p.store.SaveRecord(ctx, c.ID, &records[i]); err != nil {
			return nil, nil, fmt.Errorf("save record: %w", err)
		}
	}

	mergeCaseData(c, records)
	if err := p.store.UpdateCase(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("update case: %w", err)
	}

	start := time.Now()
	rep, err := p.engine.VerifyCase(ctx, c.ID)
	if err != nil {
		metrics.CasesProcessedTotal.WithLabelValues("verification_failed").Inc()
		return nil, nil, err
	}
	metrics.VerificationDuration.Observe(time.Since(start).Seconds())
	metrics.VerificationScore.Observe(rep.OverallScore)
	metrics.CasesProcessedTotal.WithLabelValues(rep.OverallStatus()).Inc()

	p.log.Info("case processed",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"score", rep.OverallScore,
		"status", rep.OverallStatus(),
	)
	return c, rep, nil
}

// ExtractDocument runs one upload through text extraction and field
// extraction without persisting anything.
func (p *Processor) ExtractDocument(u Upload) (*record.Record, error) {
	extractor, err := textract.ForFile(u.Filename, p.textractOpts)
	if err != nil {
		metrics.DocumentsExtractedTotal.WithLabelValues(string(u.Variant), "unsupported").Inc()
		return nil, err
	}
	res, err := extractor.Extract(bytes.NewReader(u.Data), u.Filename)
	if err != nil {
		metrics.DocumentsExtractedTotal.WithLabelValues(string(u.Variant), "error").Inc()
		return nil, &record.ExtractionError{Kind: u.Filename, Err: err}
	}

	// Native text formats carry no quality signal; treat them as fully
	// confident.
	confidence := 1.0
	if res.Confidence != nil {
		confidence = *res.Confidence
	}

	rec, err := extract.Document(u.Variant, res.Text, confidence)
	if err != nil {
		metrics.DocumentsExtractedTotal.WithLabelValues(string(u.Variant), "error").Inc()
		return nil, err
	}
	metrics.DocumentsExtractedTotal.WithLabelValues(string(u.Variant), "ok").Inc()
	return rec, nil
}

// mergeCaseData fills the case header from the extracted records. The
// baseline document wins for every field; another document's value is
// used only when the baseline left the field empty.
func mergeCaseData(c *record.Case, records []record.Record) {
	ordered := make([]record.Record, 0, len(records))
	for _, v := range record.Variants {
		for _, rec := range records {
			if rec.Variant == v {
				ordered = append(ordered, rec)
			}
		}
	}
	for _, rec := range ordered {
		fill(&c.PatientName, rec.PatientName)
		fill(&c.PatientID, rec.PatientID)
		fill(&c.SurgeryDate, rec.Date)
		fill(&c.City, rec.City)
		fill(&c.DoctorName, rec.Doctor)
		fill(&c.Procedure, rec.Procedure)
	}
}

func fill(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// newCaseNumber builds a human-scannable case number with a timestamp
// plus a short random suffix against same-second collisions.
func newCaseNumber() string {
	short := uuid.NewString()[:8]
	return fmt.Sprintf("VG_%s_%s", time.Now().Format("20060102_150405"), short)
}
