package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vgmedical/surgiverify/internal/record"
)

// Baseline items carry traceability tokens:
//
//	Tornillo encefálico 3.5x55mm (2) REF: ABC123 LOT: DEF456 [UDI]
//
// Any of the bracketed parts may be absent. The hospital report uses the
// same "<name> (<qty>)" shape without traceability tokens.
var (
	baselineItemRe = regexp.MustCompile(`(?i)([A-Za-zÁÉÍÓÚÑáéíóúñ\d.,x× -]+?)\s*\((\d+)\)(?:\s*REF[:\s]*([A-Z0-9-]+))?(?:\s*LOT[:\s]*([A-Z0-9-]+))?(\s*\[UDI\])?`)
	hospitalItemRe = regexp.MustCompile(`(?i)([A-Za-zÁÉÍÓÚÑáéíóúñ\d.,x× -]+?)\s*\((\d+)\)`)
)

func baselineItems(text string, confidence float64) []record.LineItem {
	var items []record.LineItem
	for _, line := range strings.Split(text, "\n") {
		for _, m := range baselineItemRe.FindAllStringSubmatch(line, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" {
				continue
			}
			items = append(items, record.LineItem{
				Name:       name,
				Quantity:   parseQuantity(m[2]),
				RefCode:    m[3],
				LotCode:    m[4],
				UDIPresent: m[5] != "",
				Confidence: confidence,
			})
		}
	}
	return items
}

func hospitalItems(text string, confidence float64) []record.LineItem {
	var items []record.LineItem
	for _, line := range strings.Split(text, "\n") {
		for _, m := range hospitalItemRe.FindAllStringSubmatch(line, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" {
				continue
			}
			items = append(items, record.LineItem{
				Name:       name,
				Quantity:   parseQuantity(m[2]),
				Confidence: confidence,
			})
		}
	}
	return items
}

// The surgeon's description has no item list; supplies are mentioned inside
// labeled prose sections. Matching sections are concatenated and two
// fallback item shapes are applied to the combined text.
var descriptionSectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)MATERIALES[:\s]*(?P<materials>[^.]+)`),
	regexp.MustCompile(`(?is)INSUMOS[:\s]*(?P<supplies>[^.]+)`),
	regexp.MustCompile(`(?is)SE UTILIZ[ÓO][:\s]*(?P<used>[^.]+)`),
	regexp.MustCompile(`(?is)IMPLANTES[:\s]*(?P<implants>[^.]+)`),
}

var descriptionItemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?P<quantity>\d+)\s+(?P<name>[A-Za-zÁÉÍÓÚÑáéíóúñ\d.,x× -]+)`),
	regexp.MustCompile(`(?i)(?P<name>[A-Za-zÁÉÍÓÚÑáéíóúñ\d.,x× -]+?)\s*\((?P<quantity>\d+)\)`),
}

func descriptionItems(text string, confidence float64) []record.LineItem {
	var sections strings.Builder
	for _, p := range descriptionSectionPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			sections.WriteString(m[1])
			sections.WriteString(" ")
		}
	}
	supplyText := sections.String()
	if supplyText == "" {
		return nil
	}

	var items []record.LineItem
	for _, p := range descriptionItemPatterns {
		nameIdx := p.SubexpIndex("name")
		qtyIdx := p.SubexpIndex("quantity")
		for _, m := range p.FindAllStringSubmatch(supplyText, -1) {
			name := strings.TrimSpace(m[nameIdx])
			if name == "" {
				continue
			}
			items = append(items, record.LineItem{
				Name:       name,
				Quantity:   parseQuantity(m[qtyIdx]),
				Confidence: confidence,
			})
		}
	}
	return items
}

// parseQuantity defaults to 1 when the captured quantity is unusable.
func parseQuantity(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
