package verify

import (
	"strings"
	"testing"

	"github.com/vgmedical/surgiverify/internal/record"
)

func threeRecords() []record.Record {
	return []record.Record{
		{
			Variant:     record.VariantBaseline,
			PatientName: "Juan Pérez García",
			PatientID:   "12345678",
			Date:        "2024-03-15",
			City:        "Bogotá",
			Doctor:      "Dr. Carlos Ruiz",
			Procedure:   "Artrodesis lumbar",
		},
		{
			Variant:     record.VariantHospital,
			PatientName: "JUAN PEREZ GARCIA",
			PatientID:   "1.234.567-8",
			Date:        "2024-03-15",
			City:        "bogotá",
			Doctor:      "Carlos Ruiz",
			Procedure:   "Artrodesis lumbar L4-L5",
		},
		{
			Variant:     record.VariantDescription,
			PatientName: "Juan Perez Garcia",
			PatientID:   "12345678",
			Date:        "2024-03-15",
			City:        "BOGOTÁ",
			Doctor:      "DR. CARLOS RUIZ",
			Procedure:   "Artrodesis lumbar",
		},
	}
}

func TestBasicDataAllMatch(t *testing.T) {
	res := BasicData(threeRecords())
	if !res.Match {
		t.Fatalf("expected match, got discrepancies %v", res.Discrepancies)
	}
	if res.MatchPercentage != 100 {
		t.Errorf("match percentage = %v, expected 100", res.MatchPercentage)
	}
	if len(res.Fields) != 6 {
		t.Errorf("expected 6 field results, got %d", len(res.Fields))
	}
}

func TestBasicDataTwoDocuments(t *testing.T) {
	res := BasicData(threeRecords()[:2])
	if res.Match {
		t.Error("expected no match with two documents")
	}
	if res.DocumentsFound != 2 {
		t.Errorf("documents found = %d, expected 2", res.DocumentsFound)
	}
	if res.Err == "" {
		t.Error("expected an error result, got none")
	}
}

func TestBasicDataDuplicateVariant(t *testing.T) {
	records := threeRecords()
	records[2].Variant = record.VariantHospital
	res := BasicData(records)
	if res.Match {
		t.Error("expected no match with a duplicated variant")
	}
	if res.Err == "" {
		t.Error("expected an error result for duplicated variant")
	}
}

func TestBasicDataIDFormattingIgnored(t *testing.T) {
	records := threeRecords()
	records[0].PatientID = "12.345.678"
	records[1].PatientID = "12345678"
	res := BasicData(records)
	if fr := res.Fields["patient_id"]; !fr.Match {
		t.Errorf("expected id formatting to be ignored, got %+v", fr)
	}
}

func TestBasicDataDifferentPatient(t *testing.T) {
	records := threeRecords()
	records[1].PatientName = "Pedro Gómez Sánchez"
	res := BasicData(records)
	if fr := res.Fields["patient_name"]; fr.Match {
		t.Error("expected patient name mismatch")
	}
	found := false
	for _, d := range res.Discrepancies {
		if strings.HasPrefix(d, "patient_name:") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a patient_name discrepancy, got %v", res.Discrepancies)
	}
}

func TestBasicDataDifferentDates(t *testing.T) {
	records := threeRecords()
	records[2].Date = "2024-03-16"
	res := BasicData(records)
	if fr := res.Fields["date"]; fr.Match {
		t.Error("expected date mismatch")
	}
}

func TestBasicDataProcedureVariantAccepted(t *testing.T) {
	// The hospital document carries a longer variant of the procedure;
	// contained-within similarity must accept it.
	res := BasicData(threeRecords())
	if fr := res.Fields["procedure"]; !fr.Match {
		t.Errorf("expected procedure variants to match, got %+v", fr)
	}
}

func TestBasicDataEmptyFieldsMatch(t *testing.T) {
	records := threeRecords()
	records[1].City = ""
	records[2].City = ""
	res := BasicData(records)
	if fr := res.Fields["city"]; !fr.Match {
		t.Errorf("single non-empty value must match, got %+v", fr)
	}
}
