package verify

import (
	"fmt"

	"github.com/vgmedical/surgiverify/internal/match"
	"github.com/vgmedical/surgiverify/internal/record"
)

const (
	// supplyConfidenceThreshold is the minimum matcher confidence for a
	// name match to count toward reconciliation.
	supplyConfidenceThreshold = 85
	// supplyMatchThreshold is the minimum reconciled percentage for the
	// supply verification to pass.
	supplyMatchThreshold = 90.0
)

// SupplyVerifier reconciles line items across the three documents using
// the baseline document's items as the reference list.
type SupplyVerifier struct {
	matcher *match.Matcher
}

func NewSupplyVerifier(m *match.Matcher) *SupplyVerifier {
	return &SupplyVerifier{matcher: m}
}

// Verify checks every baseline item for a name and quantity match in the
// hospital and description documents. A variant with zero line items is an
// error condition, not a 0% score against an empty set.
func (v *SupplyVerifier) Verify(records []record.Record) record.SupplyResult {
	byVariant := make(map[record.Variant][]record.LineItem, len(records))
	for _, r := range records {
		byVariant[r.Variant] = r.LineItems
	}
	for _, variant := range record.Variants {
		if len(byVariant[variant]) == 0 {
			return record.SupplyResult{
				Match: false,
				Err:   fmt.Sprintf("%s document has no line items", variant),
			}
		}
	}

	baseline := byVariant[record.VariantBaseline]
	hospital := byVariant[record.VariantHospital]
	description := byVariant[record.VariantDescription]

	items := make([]record.SupplyItemResult, 0, len(baseline))
	matched := 0
	var discrepancies []string
	for _, item := range baseline {
		res := v.verifyItem(item, hospital, description)
		items = append(items, res)
		if res.NameMatch && res.QuantityMatch {
			matched++
		} else if res.Discrepancy != "" {
			discrepancies = append(discrepancies, fmt.Sprintf("%s: %s", item.Name, res.Discrepancy))
		}
	}

	pct := float64(matched) / float64(len(baseline)) * 100
	return record.SupplyResult{
		Match:           pct >= supplyMatchThreshold,
		MatchPercentage: pct,
		TotalSupplies:   len(baseline),
		MatchedSupplies: matched,
		Items:           items,
		Discrepancies:   discrepancies,
	}
}

func (v *SupplyVerifier) verifyItem(item record.LineItem, hospital, description []record.LineItem) record.SupplyItemResult {
	res := record.SupplyItemResult{
		BaselineName:     item.Name,
		BaselineQuantity: item.Quantity,
		RefCode:          item.RefCode,
		LotCode:          item.LotCode,
		UDIPresent:       item.UDIPresent,
	}

	res.HospitalMatch = v.findItemMatch(item, hospital)
	res.DescriptionMatch = v.findItemMatch(item, description)

	for _, ev := range []*record.SupplyMatchEvidence{res.HospitalMatch, res.DescriptionMatch} {
		if ev == nil {
			continue
		}
		if ev.Confidence >= supplyConfidenceThreshold {
			res.NameMatch = true
		}
		if ev.Quantity == item.Quantity {
			res.QuantityMatch = true
		}
	}

	if !res.NameMatch {
		res.Discrepancy = "no name match found in other documents"
	} else if !res.QuantityMatch {
		res.Discrepancy = "quantities do not match"
	}
	return res
}

func (v *SupplyVerifier) findItemMatch(target record.LineItem, candidates []record.LineItem) *record.SupplyMatchEvidence {
	if len(candidates) == 0 {
		return nil
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	m, ok := v.matcher.FindMatch(target.Name, names)
	if !ok {
		return nil
	}
	for _, c := range candidates {
		if c.Name == m.Name {
			return &record.SupplyMatchEvidence{
				Name:       c.Name,
				Quantity:   c.Quantity,
				Confidence: m.Confidence,
			}
		}
	}
	return nil
}
