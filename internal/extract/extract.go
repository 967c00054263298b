// Package extract turns raw per-document text into structured records.
// The three document variants share the metadata-field extraction logic
// and differ only in how line items are pulled out of the text.
package extract

import (
	"errors"

	"github.com/vgmedical/surgiverify/internal/record"
)

// Document extracts a structured record from raw text for the given
// document variant. Missing fields degrade to empty values; the only error
// condition is an unknown variant.
func Document(variant record.Variant, text string, confidence float64) (*record.Record, error) {
	if !variant.Valid() {
		return nil, &record.ExtractionError{Kind: string(variant), Err: errors.New("unknown document variant")}
	}

	rec := &record.Record{
		Variant:              variant,
		PatientName:          firstMatch(patientNamePatterns, text),
		PatientID:            firstMatch(patientIDPatterns, text),
		Date:                 extractDate(text),
		City:                 firstMatch(cityPatterns, text),
		Doctor:               firstMatch(doctorPatterns, text),
		Procedure:            firstMatch(procedurePatterns, text),
		RawText:              text,
		ExtractionConfidence: confidence,
	}

	switch variant {
	case record.VariantBaseline:
		rec.LineItems = baselineItems(text, confidence)
	case record.VariantHospital:
		rec.LineItems = hospitalItems(text, confidence)
	case record.VariantDescription:
		rec.LineItems = descriptionItems(text, confidence)
	}

	return rec, nil
}
