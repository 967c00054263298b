package verify

import (
	"fmt"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/vgmedical/surgiverify/internal/normalize"
	"github.com/vgmedical/surgiverify/internal/record"
)

const (
	// nameSimilarityThreshold accepts small OCR/typing differences in
	// person names after normalization.
	nameSimilarityThreshold = 85
	// procedureSimilarityThreshold is more permissive: procedure
	// descriptions legitimately vary in wording across documents.
	procedureSimilarityThreshold = 70
	// basicMatchThreshold is the minimum field match percentage for the
	// basic-data verification to pass.
	basicMatchThreshold = 80.0
)

// basicFields fixes the comparison and reporting order of the six fields.
var basicFields = []string{"patient_name", "patient_id", "date", "city", "doctor", "procedure"}

// BasicData reconciles the six metadata fields across the three document
// records. Fewer than three records (or a missing variant) yields an error
// result carrying the observed count, not a panic.
func BasicData(records []record.Record) record.BasicDataResult {
	byVariant := make(map[record.Variant]record.Record, len(records))
	for _, r := range records {
		byVariant[r.Variant] = r
	}
	if len(records) != 3 || len(byVariant) != 3 {
		found := len(byVariant)
		if len(records) < found {
			found = len(records)
		}
		return record.BasicDataResult{
			Match:          false,
			Err:            fmt.Sprintf("3 documents required, found %d", found),
			DocumentsFound: found,
			Fields:         map[string]record.FieldResult{},
		}
	}

	fields := make(map[string]record.FieldResult, len(basicFields))
	matches := 0
	var discrepancies []string
	for _, field := range basicFields {
		values := make(map[record.Variant]string, 3)
		for v, r := range byVariant {
			values[v] = fieldValue(r, field)
		}
		fr := verifyField(field, values)
		fields[field] = fr
		if fr.Match {
			matches++
		} else if fr.Discrepancy != "" {
			discrepancies = append(discrepancies, fmt.Sprintf("%s: %s", field, fr.Discrepancy))
		}
	}

	pct := float64(matches) / float64(len(basicFields)) * 100
	return record.BasicDataResult{
		Match:           pct >= basicMatchThreshold,
		MatchPercentage: pct,
		Fields:          fields,
		Discrepancies:   discrepancies,
	}
}

func fieldValue(r record.Record, field string) string {
	switch field {
	case "patient_name":
		return r.PatientName
	case "patient_id":
		return r.PatientID
	case "date":
		return r.Date
	case "city":
		return r.City
	case "doctor":
		return r.Doctor
	case "procedure":
		return r.Procedure
	}
	return ""
}

func verifyField(field string, values map[record.Variant]string) record.FieldResult {
	switch field {
	case "patient_name", "doctor":
		return verifyNameField(values)
	case "patient_id":
		return verifyIDField(values)
	case "date":
		return verifyDateField(values)
	case "city":
		return verifyCityField(values)
	case "procedure":
		return verifyProcedureField(values)
	}
	return record.FieldResult{Match: false, Values: values, Discrepancy: "unknown field"}
}

// verifyNameField compares person names after name normalization; distinct
// values must still be pairwise similar above the threshold.
func verifyNameField(values map[record.Variant]string) record.FieldResult {
	distinct := distinctValues(values, normalize.Person)
	if len(distinct) <= 1 {
		return record.FieldResult{Match: true, Values: values}
	}
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			if fuzzy.Ratio(distinct[i], distinct[j]) < nameSimilarityThreshold {
				return record.FieldResult{
					Match:       false,
					Values:      values,
					Discrepancy: "values differ: " + strings.Join(distinct, " / "),
				}
			}
		}
	}
	return record.FieldResult{Match: true, Values: values}
}

// verifyIDField compares identifiers on digits only, so formatting like
// dots and dashes does not count as a discrepancy.
func verifyIDField(values map[record.Variant]string) record.FieldResult {
	distinct := distinctValues(values, normalize.Digits)
	if len(distinct) <= 1 {
		return record.FieldResult{Match: true, Values: values}
	}
	return record.FieldResult{
		Match:       false,
		Values:      values,
		Discrepancy: "ids differ: " + strings.Join(distinct, " / "),
	}
}

func verifyDateField(values map[record.Variant]string) record.FieldResult {
	distinct := distinctValues(values, strings.TrimSpace)
	if len(distinct) <= 1 {
		return record.FieldResult{Match: true, Values: values}
	}
	return record.FieldResult{
		Match:       false,
		Values:      values,
		Discrepancy: "dates differ: " + strings.Join(distinct, " / "),
	}
}

func verifyCityField(values map[record.Variant]string) record.FieldResult {
	distinct := distinctValues(values, func(s string) string {
		return strings.ToUpper(strings.TrimSpace(s))
	})
	if len(distinct) <= 1 {
		return record.FieldResult{Match: true, Values: values}
	}
	return record.FieldResult{
		Match:       false,
		Values:      values,
		Discrepancy: "cities differ: " + strings.Join(distinct, " / "),
	}
}

// verifyProcedureField uses contained-within similarity since one document
// often carries a longer variant of the same procedure description.
func verifyProcedureField(values map[record.Variant]string) record.FieldResult {
	var nonEmpty []string
	for _, v := range record.Variants {
		if s := strings.TrimSpace(values[v]); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) < 2 {
		return record.FieldResult{Match: true, Values: values}
	}
	base := strings.ToLower(nonEmpty[0])
	for _, p := range nonEmpty[1:] {
		if fuzzy.PartialRatio(base, strings.ToLower(p)) < procedureSimilarityThreshold {
			return record.FieldResult{
				Match:       false,
				Values:      values,
				Discrepancy: "procedure descriptions differ substantially",
			}
		}
	}
	return record.FieldResult{Match: true, Values: values}
}

// distinctValues normalizes each value and returns the sorted distinct
// non-empty results.
func distinctValues(values map[record.Variant]string, norm func(string) string) []string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if n := norm(v); n != "" {
			seen[n] = true
		}
	}
	distinct := make([]string, 0, len(seen))
	for n := range seen {
		distinct = append(distinct, n)
	}
	sort.Strings(distinct)
	return distinct
}
