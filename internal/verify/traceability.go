package verify

import (
	"github.com/vgmedical/surgiverify/internal/record"
)

// traceabilityThreshold is the minimum completion percentage for the
// traceability verification to pass.
const traceabilityThreshold = 95.0

// Traceability checks regulatory completeness (REF code, LOT code, UDI
// label) on the baseline document's line items. Only the baseline
// document carries traceability data.
func Traceability(records []record.Record) record.TraceabilityResult {
	var baseline *record.Record
	for i := range records {
		if records[i].Variant == record.VariantBaseline {
			baseline = &records[i]
			break
		}
	}
	if baseline == nil {
		return record.TraceabilityResult{
			Complete: false,
			Err:      "baseline document not found",
		}
	}

	items := make([]record.TraceabilityItemResult, 0, len(baseline.LineItems))
	complete := 0
	var missing []string
	for _, item := range baseline.LineItems {
		res := itemTraceability(item)
		items = append(items, res)
		if res.Complete {
			complete++
		} else {
			missing = append(missing, item.Name)
		}
	}

	pct := 0.0
	if len(items) > 0 {
		pct = float64(complete) / float64(len(items)) * 100
	}
	return record.TraceabilityResult{
		Complete:             pct >= traceabilityThreshold,
		CompletionPercentage: pct,
		TotalSupplies:        len(items),
		CompleteSupplies:     complete,
		Items:                items,
		MissingItems:         missing,
	}
}

func itemTraceability(item record.LineItem) record.TraceabilityItemResult {
	res := record.TraceabilityItemResult{
		SupplyName:  item.Name,
		RefCode:     item.RefCode,
		LotCode:     item.LotCode,
		UDIPresent:  item.UDIPresent,
		RefComplete: item.RefCode != "",
		LotComplete: item.LotCode != "",
		UDIComplete: item.UDIPresent,
	}
	if !res.RefComplete {
		res.Issues = append(res.Issues, "missing REF code")
	}
	if !res.LotComplete {
		res.Issues = append(res.Issues, "missing LOT code")
	}
	if !res.UDIComplete {
		res.Issues = append(res.Issues, "missing UDI label")
	}
	res.Complete = res.RefComplete && res.LotComplete && res.UDIComplete
	return res
}
