// Package storage defines the persistence contract the engine delegates
// to, plus a Postgres implementation and an in-memory implementation used
// by tests and single-process deployments.
package storage

import (
	"context"
	"errors"

	"github.com/vgmedical/surgiverify/internal/record"
)

// ErrNotFound is returned when a requested case, record or report does
// not exist.
var ErrNotFound = errors.New("not found")

// Storage is the full persistence contract. The engine itself only uses
// the read-records / upsert-report / equivalence-table slice; the rest
// serves case processing and the API layer.
//
// UpsertReport keeps exactly one report per case: recomputation replaces
// the prior report. Concurrent upserts for the same case are
// last-writer-wins; this layer does not implement optimistic locking.
type Storage interface {
	CreateCase(ctx context.Context, c *record.Case) error
	GetCase(ctx context.Context, id string) (*record.Case, error)
	UpdateCase(ctx context.Context, c *record.Case) error

	// SaveRecord stores the extracted record for (case, variant),
	// replacing any prior record for the same variant: re-extraction
	// produces a new record, never mutates one in place.
	SaveRecord(ctx context.Context, caseID string, rec *record.Record) error
	LoadRecordsForCase(ctx context.Context, caseID string) ([]record.Record, error)

	UpsertReport(ctx context.Context, caseID string, rep *record.VerificationReport) error
	LoadReport(ctx context.Context, caseID string) (*record.VerificationReport, error)

	LoadEquivalenceTable(ctx context.Context) (map[string][]string, error)
	// LoadEquivalenceEntry returns nil without error when no entry
	// exists for the canonical name.
	LoadEquivalenceEntry(ctx context.Context, canonicalName string) (*record.EquivalenceEntry, error)
	SaveEquivalenceEntry(ctx context.Context, entry *record.EquivalenceEntry) error
}
