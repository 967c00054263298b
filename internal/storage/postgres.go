package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vgmedical/surgiverify/internal/record"
)

// Schema creates the tables on first run. line_items, aliases and the
// report body are stored as JSONB; the engine never queries inside them.
const Schema = `
CREATE TABLE IF NOT EXISTS surgical_cases (
	id           TEXT PRIMARY KEY,
	case_number  TEXT NOT NULL UNIQUE,
	patient_name TEXT NOT NULL DEFAULT '',
	patient_id   TEXT NOT NULL DEFAULT '',
	surgery_date TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	doctor_name    TEXT NOT NULL DEFAULT '',
	procedure_name TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS case_documents (
	case_id               TEXT NOT NULL REFERENCES surgical_cases(id),
	variant               TEXT NOT NULL,
	patient_name          TEXT NOT NULL DEFAULT '',
	patient_id            TEXT NOT NULL DEFAULT '',
	surgery_date          TEXT NOT NULL DEFAULT '',
	city                  TEXT NOT NULL DEFAULT '',
	doctor_name           TEXT NOT NULL DEFAULT '',
	procedure_name        TEXT NOT NULL DEFAULT '',
	line_items            JSONB NOT NULL DEFAULT '[]',
	raw_text              TEXT NOT NULL DEFAULT '',
	extraction_confidence DOUBLE PRECISION NOT NULL DEFAULT 1,
	PRIMARY KEY (case_id, variant)
);

CREATE TABLE IF NOT EXISTS verification_reports (
	case_id    TEXT PRIMARY KEY REFERENCES surgical_cases(id),
	report     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS supply_equivalences (
	canonical_name   TEXT PRIMARY KEY,
	aliases          JSONB NOT NULL DEFAULT '[]',
	confidence_score DOUBLE PRECISION NOT NULL DEFAULT 1,
	times_used       INTEGER NOT NULL DEFAULT 0,
	is_auto          BOOLEAN NOT NULL DEFAULT FALSE,
	validated_by     TEXT NOT NULL DEFAULT ''
);
`

// Postgres implements Storage on database/sql with the lib/pq driver.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects, pings and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) CreateCase(ctx context.Context, c *record.Case) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO surgical_cases
			(id, case_number, patient_name, patient_id, surgery_date, city, doctor_name, procedure_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.CaseNumber, c.PatientName, c.PatientID, c.SurgeryDate, c.City, c.DoctorName, c.Procedure, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

func (p *Postgres) GetCase(ctx context.Context, id string) (*record.Case, error) {
	var c record.Case
	err := p.db.QueryRowContext(ctx, `
		SELECT id, case_number, patient_name, patient_id, surgery_date, city, doctor_name, procedure_name, created_at
		FROM surgical_cases WHERE id = $1`, id).
		Scan(&c.ID, &c.CaseNumber, &c.PatientName, &c.PatientID, &c.SurgeryDate, &c.City, &c.DoctorName, &c.Procedure, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return &c, nil
}

func (p *Postgres) UpdateCase(ctx context.Context, c *record.Case) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE surgical_cases
		SET patient_name = $2, patient_id = $3, surgery_date = $4, city = $5, doctor_name = $6, procedure_name = $7
		WHERE id = $1`,
		c.ID, c.PatientName, c.PatientID, c.SurgeryDate, c.City, c.DoctorName, c.Procedure)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveRecord(ctx context.Context, caseID string, rec *record.Record) error {
	items, err := json.Marshal(rec.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO case_documents
			(case_id, variant, patient_name, patient_id, surgery_date, city, doctor_name, procedure_name, line_items, raw_text, extraction_confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (case_id, variant) DO UPDATE SET
			patient_name = EXCLUDED.patient_name,
			patient_id = EXCLUDED.patient_id,
			surgery_date = EXCLUDED.surgery_date,
			city = EXCLUDED.city,
			doctor_name = EXCLUDED.doctor_name,
			procedure_name = EXCLUDED.procedure_name,
			line_items = EXCLUDED.line_items,
			raw_text = EXCLUDED.raw_text,
			extraction_confidence = EXCLUDED.extraction_confidence`,
		caseID, string(rec.Variant), rec.PatientName, rec.PatientID, rec.Date, rec.City,
		rec.Doctor, rec.Procedure, items, rec.RawText, rec.ExtractionConfidence)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (p *Postgres) LoadRecordsForCase(ctx context.Context, caseID string) ([]record.Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT variant, patient_name, patient_id, surgery_date, city, doctor_name, procedure_name, line_items, raw_text, extraction_confidence
		FROM case_documents WHERE case_id = $1
		ORDER BY variant`, caseID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var rec record.Record
		var variant string
		var items []byte
		if err := rows.Scan(&variant, &rec.PatientName, &rec.PatientID, &rec.Date, &rec.City,
			&rec.Doctor, &rec.Procedure, &items, &rec.RawText, &rec.ExtractionConfidence); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Variant = record.Variant(variant)
		if err := json.Unmarshal(items, &rec.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

func (p *Postgres) UpsertReport(ctx context.Context, caseID string, rep *record.VerificationReport) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO verification_reports (case_id, report, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (case_id) DO UPDATE SET report = EXCLUDED.report, updated_at = now()`,
		caseID, body)
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

func (p *Postgres) LoadReport(ctx context.Context, caseID string) (*record.VerificationReport, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT report FROM verification_reports WHERE case_id = $1`, caseID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	var rep record.VerificationReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}

func (p *Postgres) LoadEquivalenceTable(ctx context.Context) (map[string][]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT canonical_name, aliases FROM supply_equivalences`)
	if err != nil {
		return nil, fmt.Errorf("load equivalence table: %w", err)
	}
	defer rows.Close()

	table := make(map[string][]string)
	for rows.Next() {
		var canonical string
		var raw []byte
		if err := rows.Scan(&canonical, &raw); err != nil {
			return nil, fmt.Errorf("scan equivalence: %w", err)
		}
		var aliases []string
		if err := json.Unmarshal(raw, &aliases); err != nil {
			return nil, fmt.Errorf("decode aliases: %w", err)
		}
		table[canonical] = aliases
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load equivalence table: %w", err)
	}
	return table, nil
}

func (p *Postgres) LoadEquivalenceEntry(ctx context.Context, canonicalName string) (*record.EquivalenceEntry, error) {
	var entry record.EquivalenceEntry
	var raw []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT canonical_name, aliases, confidence_score, times_used, is_auto, validated_by
		FROM supply_equivalences WHERE canonical_name = $1`, canonicalName).
		Scan(&entry.CanonicalName, &raw, &entry.ConfidenceScore, &entry.TimesUsed, &entry.IsAutoGenerated, &entry.ValidatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load equivalence entry: %w", err)
	}
	if err := json.Unmarshal(raw, &entry.Aliases); err != nil {
		return nil, fmt.Errorf("decode aliases: %w", err)
	}
	return &entry, nil
}

func (p *Postgres) SaveEquivalenceEntry(ctx context.Context, entry *record.EquivalenceEntry) error {
	aliases, err := json.Marshal(entry.Aliases)
	if err != nil {
		return fmt.Errorf("encode aliases: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO supply_equivalences (canonical_name, aliases, confidence_score, times_used, is_auto, validated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (canonical_name) DO UPDATE SET
			aliases = EXCLUDED.aliases,
			confidence_score = EXCLUDED.confidence_score,
			times_used = EXCLUDED.times_used,
			is_auto = EXCLUDED.is_auto,
			validated_by = EXCLUDED.validated_by`,
		entry.CanonicalName, aliases, entry.ConfidenceScore, entry.TimesUsed, entry.IsAutoGenerated, entry.ValidatedBy)
	if err != nil {
		return fmt.Errorf("save equivalence entry: %w", err)
	}
	return nil
}
