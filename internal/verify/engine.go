// Package verify reconciles a case's three structured document records
// into a single scored, explainable report.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vgmedical/surgiverify/internal/match"
	"github.com/vgmedical/surgiverify/internal/record"
)

// Score weights. Supplies carry the most weight as the primary
// fraud-relevant signal.
const (
	basicDataWeight    = 0.3
	suppliesWeight     = 0.5
	traceabilityWeight = 0.2

	// reviewScoreThreshold forces manual review below this overall score
	// even when every sub-verification passed.
	reviewScoreThreshold = 85.0
)

// Storage is the slice of the storage contract the engine needs: it reads
// the case's extracted records, reads the equivalence table, and writes
// exactly one report per case (the upsert replaces any prior report).
type Storage interface {
	LoadRecordsForCase(ctx context.Context, caseID string) ([]record.Record, error)
	UpsertReport(ctx context.Context, caseID string, rep *record.VerificationReport) error
	LoadEquivalenceTable(ctx context.Context) (map[string][]string, error)
}

// Engine runs the three verifiers and aggregates their results. It is
// stateless per call; concurrent verification of different cases is safe.
// Concurrent verification of the same case is last-writer-wins at the
// storage upsert.
type Engine struct {
	store Storage
	log   *slog.Logger
}

func NewEngine(store Storage, log *slog.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// VerifyRecords reconciles already-extracted records without touching
// storage. Insufficient input (missing documents, empty item lists) is
// reported inside the result structures; the returned error is reserved
// for unexpected failures, surfaced as a VerificationError.
func (e *Engine) VerifyRecords(caseID string, records []record.Record, matcher *match.Matcher) (rep *record.VerificationReport, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			rep = nil
			err = &record.VerificationError{CaseID: caseID, Err: fmt.Errorf("%v", r)}
		}
	}()

	basic := BasicData(records)
	supplies := NewSupplyVerifier(matcher).Verify(records)
	traceability := Traceability(records)

	score := overallScore(basic.MatchPercentage, supplies.MatchPercentage, traceability.CompletionPercentage)
	requiresReview := !basic.Match || !supplies.Match || !traceability.Complete || score < reviewScoreThreshold

	rep = &record.VerificationReport{
		CaseID:                caseID,
		BasicDataMatch:        basic.Match,
		SuppliesMatch:         supplies.Match,
		TraceabilityComplete:  traceability.Complete,
		RequiresReview:        requiresReview,
		BasicData:             basic,
		Supplies:              supplies,
		Traceability:          traceability,
		Discrepancies:         compileDiscrepancies(basic, supplies, traceability),
		OverallScore:          score,
		ProcessedAt:           time.Now(),
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}
	return rep, nil
}

// VerifyCase loads the case's records, verifies them against a fresh
// equivalence snapshot, and upserts the report. Partial results are never
// persisted: on any error nothing is written.
func (e *Engine) VerifyCase(ctx context.Context, caseID string) (*record.VerificationReport, error) {
	records, err := e.store.LoadRecordsForCase(ctx, caseID)
	if err != nil {
		return nil, &record.VerificationError{CaseID: caseID, Err: fmt.Errorf("load records: %w", err)}
	}
	table, err := e.store.LoadEquivalenceTable(ctx)
	if err != nil {
		return nil, &record.VerificationError{CaseID: caseID, Err: fmt.Errorf("load equivalence table: %w", err)}
	}

	rep, err := e.VerifyRecords(caseID, records, match.New(table))
	if err != nil {
		return nil, err
	}
	if err := e.store.UpsertReport(ctx, caseID, rep); err != nil {
		return nil, &record.VerificationError{CaseID: caseID, Err: fmt.Errorf("upsert report: %w", err)}
	}

	e.log.Info("case verified",
		"case_id", caseID,
		"score", rep.OverallScore,
		"requires_review", rep.RequiresReview,
	)
	return rep, nil
}

// overallScore is the weighted aggregate, rounded to two decimals.
func overallScore(basicPct, suppliesPct, traceabilityPct float64) float64 {
	score := basicPct*basicDataWeight + suppliesPct*suppliesWeight + traceabilityPct*traceabilityWeight
	return math.Round(score*100) / 100
}

func compileDiscrepancies(basic record.BasicDataResult, supplies record.SupplyResult, traceability record.TraceabilityResult) []string {
	var out []string
	if basic.Err != "" {
		out = append(out, "basic data: "+basic.Err)
	}
	out = append(out, basic.Discrepancies...)
	if supplies.Err != "" {
		out = append(out, "supplies: "+supplies.Err)
	}
	out = append(out, supplies.Discrepancies...)
	if traceability.Err != "" {
		out = append(out, "traceability: "+traceability.Err)
	}
	for _, name := range traceability.MissingItems {
		out = append(out, "incomplete traceability: "+name)
	}
	return out
}
