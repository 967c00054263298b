package verify

import "github.com/vgmedical/surgiverify/internal/record"

// Recommendations derives reviewer-facing next steps from a report.
func Recommendations(rep *record.VerificationReport) []string {
	var recs []string

	if !rep.BasicDataMatch {
		recs = append(recs, "Review and correct inconsistencies in the patient's basic data")
	}

	if !rep.SuppliesMatch {
		if rep.Supplies.MatchPercentage < 70 {
			recs = append(recs, "Exhaustively review supply names and quantities across all three documents")
		} else {
			recs = append(recs, "Verify the supplies with minor discrepancies")
		}
	}

	if !rep.TraceabilityComplete {
		if rep.Traceability.CompletionPercentage < 80 {
			recs = append(recs, "Complete the missing traceability data (REF/LOT/UDI)")
		} else {
			recs = append(recs, "Verify UDI labels on the remaining supplies")
		}
	}

	if rep.OverallScore < reviewScoreThreshold {
		recs = append(recs, "Full manual review recommended before approval")
	}

	return recs
}
