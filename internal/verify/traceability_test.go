package verify

import (
	"testing"

	"github.com/vgmedical/surgiverify/internal/record"
)

func TestTraceabilityComplete(t *testing.T) {
	records := []record.Record{{
		Variant: record.VariantBaseline,
		LineItems: []record.LineItem{
			{Name: "Tornillo encefálico", RefCode: "ABC123", LotCode: "DEF456", UDIPresent: true},
			{Name: "Placa recta", RefCode: "XYZ789", LotCode: "GHI012", UDIPresent: true},
		},
	}}

	res := Traceability(records)
	if !res.Complete {
		t.Fatalf("expected complete traceability, got %+v", res)
	}
	if res.CompletionPercentage != 100 {
		t.Errorf("completion = %v, expected 100", res.CompletionPercentage)
	}
	if len(res.MissingItems) != 0 {
		t.Errorf("expected no missing items, got %v", res.MissingItems)
	}
}

func TestTraceabilityMissingLot(t *testing.T) {
	records := []record.Record{{
		Variant: record.VariantBaseline,
		LineItems: []record.LineItem{
			{Name: "Tornillo encefálico", RefCode: "ABC123", LotCode: "DEF456", UDIPresent: true},
			{Name: "Placa recta", RefCode: "XYZ789", UDIPresent: true},
		},
	}}

	res := Traceability(records)
	if res.Complete {
		t.Error("expected incomplete traceability")
	}
	if res.CompletionPercentage != 50 {
		t.Errorf("completion = %v, expected 50", res.CompletionPercentage)
	}
	if len(res.MissingItems) != 1 || res.MissingItems[0] != "Placa recta" {
		t.Errorf("missing items = %v, expected [Placa recta]", res.MissingItems)
	}

	item := res.Items[1]
	if item.LotComplete {
		t.Error("expected lot incomplete")
	}
	found := false
	for _, issue := range item.Issues {
		if issue == "missing LOT code" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing LOT issue, got %v", item.Issues)
	}
}

func TestTraceabilityNoBaseline(t *testing.T) {
	records := []record.Record{
		{Variant: record.VariantHospital, LineItems: []record.LineItem{{Name: "Placa"}}},
	}
	res := Traceability(records)
	if res.Complete {
		t.Error("expected incomplete result without a baseline document")
	}
	if res.Err == "" {
		t.Error("expected an error result")
	}
}

func TestTraceabilityNoItems(t *testing.T) {
	records := []record.Record{{Variant: record.VariantBaseline}}
	res := Traceability(records)
	if res.Complete {
		t.Error("zero items must not count as complete")
	}
	if res.CompletionPercentage != 0 {
		t.Errorf("completion = %v, expected 0", res.CompletionPercentage)
	}
}
