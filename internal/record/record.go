// Package record holds the data model shared by extraction, verification
// and storage: document records, line items, equivalence entries and
// verification reports.
package record

import (
	"strings"
	"time"
)

// Variant identifies which of the three case documents a record came from.
type Variant string

const (
	// VariantBaseline is the institution's own expense report, the
	// authoritative source for line items and traceability.
	VariantBaseline Variant = "baseline"
	// VariantHospital is the hospital's expense report.
	VariantHospital Variant = "hospital"
	// VariantDescription is the surgeon's free-text procedure description.
	VariantDescription Variant = "description"
)

// Variants lists all document variants a complete case must carry.
var Variants = []Variant{VariantBaseline, VariantHospital, VariantDescription}

// Valid reports whether v is a known document variant.
func (v Variant) Valid() bool {
	switch v {
	case VariantBaseline, VariantHospital, VariantDescription:
		return true
	}
	return false
}

// LineItem is one medical supply occurrence inside a document.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	RefCode    string  `json:"ref_code,omitempty"`
	LotCode    string  `json:"lot_code,omitempty"`
	UDIPresent bool    `json:"udi_present"`
	Confidence float64 `json:"confidence"`
}

// Record is the structured output of extracting one document.
// A Record is created once by an extractor and never mutated; re-extraction
// produces a new Record.
type Record struct {
	Variant     Variant    `json:"variant"`
	PatientName string     `json:"patient_name"`
	PatientID   string     `json:"patient_id"`
	Date        string     `json:"date"` // normalized YYYY-MM-DD, empty if unparsable
	City        string     `json:"city"`
	Doctor      string     `json:"doctor"`
	Procedure   string     `json:"procedure"`
	LineItems   []LineItem `json:"line_items"`
	RawText     string     `json:"raw_text"`

	// ExtractionConfidence is 0-1, from OCR when the source went through
	// one; 1.0 for natively textual sources.
	ExtractionConfidence float64 `json:"extraction_confidence"`
}

// EquivalenceEntry maps a canonical supply name to its known alternate
// spellings. All names are stored normalized.
type EquivalenceEntry struct {
	CanonicalName   string   `json:"canonical_name"`
	Aliases         []string `json:"aliases"`
	ConfidenceScore float64  `json:"confidence_score"`
	TimesUsed       int      `json:"times_used"`
	IsAutoGenerated bool     `json:"is_auto_generated"`
	ValidatedBy     string   `json:"validated_by,omitempty"`
}

// AddAlias appends alias unless an existing alias (or the canonical name)
// already matches it case-insensitively. Reports whether it was added.
func (e *EquivalenceEntry) AddAlias(alias string) bool {
	if strings.EqualFold(alias, e.CanonicalName) {
		return false
	}
	for _, a := range e.Aliases {
		if strings.EqualFold(a, alias) {
			return false
		}
	}
	e.Aliases = append(e.Aliases, alias)
	return true
}

// FieldResult is the per-field evidence from basic-data verification.
type FieldResult struct {
	Match       bool               `json:"match"`
	Values      map[Variant]string `json:"values"`
	Discrepancy string             `json:"discrepancy,omitempty"`
}

// BasicDataResult reconciles the six metadata fields across the three
// documents.
type BasicDataResult struct {
	Match           bool                   `json:"match"`
	MatchPercentage float64                `json:"match_percentage"`
	Fields          map[string]FieldResult `json:"fields"`
	Discrepancies   []string               `json:"discrepancies"`

	// Err is set instead of field evidence when the input itself was
	// insufficient (fewer than three documents).
	Err            string `json:"error,omitempty"`
	DocumentsFound int    `json:"documents_found,omitempty"`
}

// SupplyMatchEvidence is one candidate match found in another document.
type SupplyMatchEvidence struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Confidence int    `json:"confidence"`
}

// SupplyItemResult is the reconciliation evidence for one baseline item.
type SupplyItemResult struct {
	BaselineName     string                `json:"baseline_name"`
	BaselineQuantity int                   `json:"baseline_quantity"`
	RefCode          string                `json:"ref_code,omitempty"`
	LotCode          string                `json:"lot_code,omitempty"`
	UDIPresent       bool                  `json:"udi_present"`
	HospitalMatch    *SupplyMatchEvidence  `json:"hospital_match,omitempty"`
	DescriptionMatch *SupplyMatchEvidence  `json:"description_match,omitempty"`
	NameMatch        bool                  `json:"name_match"`
	QuantityMatch    bool                  `json:"quantity_match"`
	Discrepancy      string                `json:"discrepancy,omitempty"`
}

// SupplyResult reconciles line items across the three documents.
type SupplyResult struct {
	Match           bool               `json:"match"`
	MatchPercentage float64            `json:"match_percentage"`
	TotalSupplies   int                `json:"total_supplies"`
	MatchedSupplies int                `json:"matched_supplies"`
	Items           []SupplyItemResult `json:"items"`
	Discrepancies   []string           `json:"discrepancies"`

	Err string `json:"error,omitempty"`
}

// TraceabilityItemResult is the completeness evidence for one baseline item.
type TraceabilityItemResult struct {
	SupplyName  string   `json:"supply_name"`
	RefCode     string   `json:"ref_code,omitempty"`
	LotCode     string   `json:"lot_code,omitempty"`
	UDIPresent  bool     `json:"udi_present"`
	RefComplete bool     `json:"ref_complete"`
	LotComplete bool     `json:"lot_complete"`
	UDIComplete bool     `json:"udi_complete"`
	Complete    bool     `json:"complete"`
	Issues      []string `json:"issues,omitempty"`
}

// TraceabilityResult checks regulatory completeness on the baseline items.
type TraceabilityResult struct {
	Complete             bool                     `json:"complete"`
	CompletionPercentage float64                  `json:"completion_percentage"`
	TotalSupplies        int                      `json:"total_supplies"`
	CompleteSupplies     int                      `json:"complete_supplies"`
	Items                []TraceabilityItemResult `json:"items"`
	MissingItems         []string                 `json:"missing_items"`

	Err string `json:"error,omitempty"`
}

// Overall status values derived from a report.
const (
	StatusApproved       = "APPROVED"
	StatusRequiresReview = "REQUIRES_REVIEW"
	StatusRejected       = "REJECTED"
)

// VerificationReport is the single scored result for one case. Recomputing
// a case replaces its prior report.
type VerificationReport struct {
	CaseID string `json:"case_id"`

	BasicDataMatch       bool `json:"basic_data_match"`
	SuppliesMatch        bool `json:"supplies_match"`
	TraceabilityComplete bool `json:"traceability_complete"`
	RequiresReview       bool `json:"requires_review"`

	BasicData    BasicDataResult    `json:"basic_data"`
	Supplies     SupplyResult       `json:"supplies"`
	Traceability TraceabilityResult `json:"traceability"`

	Discrepancies []string `json:"discrepancies"`

	OverallScore          float64   `json:"overall_score"`
	ProcessedAt           time.Time `json:"processed_at"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
}

// OverallStatus derives the report's display status.
func (r *VerificationReport) OverallStatus() string {
	if r.BasicDataMatch && r.SuppliesMatch && r.TraceabilityComplete {
		return StatusApproved
	}
	if r.RequiresReview {
		return StatusRequiresReview
	}
	return StatusRejected
}

// Case is the unit of work: one surgical procedure with three documents.
type Case struct {
	ID          string    `json:"id"`
	CaseNumber  string    `json:"case_number"`
	PatientName string    `json:"patient_name"`
	PatientID   string    `json:"patient_id"`
	SurgeryDate string    `json:"surgery_date"`
	City        string    `json:"city"`
	DoctorName  string    `json:"doctor_name"`
	Procedure   string    `json:"procedure"`
	CreatedAt   time.Time `json:"created_at"`
}
