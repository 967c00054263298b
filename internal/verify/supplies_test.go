package verify

import (
	"strings"
	"testing"

	"github.com/vgmedical/surgiverify/internal/match"
	"github.com/vgmedical/surgiverify/internal/record"
)

func supplyRecords(baseline, hospital, description []record.LineItem) []record.Record {
	return []record.Record{
		{Variant: record.VariantBaseline, LineItems: baseline},
		{Variant: record.VariantHospital, LineItems: hospital},
		{Variant: record.VariantDescription, LineItems: description},
	}
}

func TestSuppliesAllReconcile(t *testing.T) {
	records := supplyRecords(
		[]record.LineItem{
			{Name: "Tornillo encefálico 3.5x55mm", Quantity: 2, RefCode: "ABC123", LotCode: "DEF456", UDIPresent: true},
			{Name: "Placa recta", Quantity: 1},
		},
		[]record.LineItem{
			{Name: "Tornillo encefalico 3.5 x 55mm", Quantity: 2},
			{Name: "placa recta", Quantity: 1},
		},
		[]record.LineItem{
			{Name: "tornillos encefalicos 3.5x55mm", Quantity: 2},
			{Name: "Placa recta", Quantity: 1},
		},
	)

	res := NewSupplyVerifier(match.New(nil)).Verify(records)
	if !res.Match {
		t.Fatalf("expected supplies to reconcile, got %+v", res)
	}
	if res.MatchPercentage != 100 {
		t.Errorf("match percentage = %v, expected 100", res.MatchPercentage)
	}
	if res.MatchedSupplies != 2 || res.TotalSupplies != 2 {
		t.Errorf("matched %d/%d, expected 2/2", res.MatchedSupplies, res.TotalSupplies)
	}
}

func TestSuppliesQuantityMismatch(t *testing.T) {
	records := supplyRecords(
		[]record.LineItem{{Name: "Placa recta", Quantity: 2}},
		[]record.LineItem{{Name: "Placa recta", Quantity: 1}},
		[]record.LineItem{{Name: "placa recta", Quantity: 1}},
	)

	res := NewSupplyVerifier(match.New(nil)).Verify(records)
	if res.Match {
		t.Error("expected quantity mismatch to fail reconciliation")
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item result, got %d", len(res.Items))
	}
	item := res.Items[0]
	if !item.NameMatch {
		t.Error("expected name to match")
	}
	if item.QuantityMatch {
		t.Error("expected quantity mismatch")
	}
	if !strings.Contains(item.Discrepancy, "quantities") {
		t.Errorf("discrepancy = %q, expected quantity wording", item.Discrepancy)
	}
}

func TestSuppliesNoNameMatch(t *testing.T) {
	records := supplyRecords(
		[]record.LineItem{{Name: "Tornillo encefálico", Quantity: 1}},
		[]record.LineItem{{Name: "Gasa estéril", Quantity: 1}},
		[]record.LineItem{{Name: "Jeringa", Quantity: 1}},
	)

	res := NewSupplyVerifier(match.New(nil)).Verify(records)
	if res.Match {
		t.Error("expected missing supply to fail reconciliation")
	}
	item := res.Items[0]
	if item.NameMatch {
		t.Error("expected no name match")
	}
	if item.HospitalMatch != nil || item.DescriptionMatch != nil {
		t.Errorf("expected no evidence, got %+v / %+v", item.HospitalMatch, item.DescriptionMatch)
	}
}

func TestSuppliesEquivalenceTableResolvesNaming(t *testing.T) {
	table := map[string][]string{
		"tornillo encefalico": {"tornillo craneal"},
	}
	records := supplyRecords(
		[]record.LineItem{{Name: "Tornillo encefálico", Quantity: 1}},
		[]record.LineItem{{Name: "Tornillo craneal", Quantity: 1}},
		[]record.LineItem{{Name: "tornillo craneal", Quantity: 1}},
	)

	res := NewSupplyVerifier(match.New(table)).Verify(records)
	if !res.Match {
		t.Fatalf("expected equivalence table to reconcile naming, got %+v", res)
	}
	if ev := res.Items[0].HospitalMatch; ev == nil || ev.Confidence != 95 {
		t.Errorf("hospital evidence = %+v, expected confidence 95", ev)
	}
}

func TestSuppliesEmptyVariantIsError(t *testing.T) {
	records := supplyRecords(
		[]record.LineItem{{Name: "Placa recta", Quantity: 1}},
		nil,
		[]record.LineItem{{Name: "placa recta", Quantity: 1}},
	)

	res := NewSupplyVerifier(match.New(nil)).Verify(records)
	if res.Match {
		t.Error("expected error result, not a match")
	}
	if !strings.Contains(res.Err, "hospital") {
		t.Errorf("error = %q, expected the hospital document named", res.Err)
	}
	if res.TotalSupplies != 0 {
		t.Errorf("error result must not score against an empty set, got total %d", res.TotalSupplies)
	}
}
