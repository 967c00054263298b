package extract

import (
	"regexp"
	"time"
)

// Field extraction is best-effort: the input is noisy OCR text, so for
// each field an ordered list of patterns is tried and the first match
// wins. No match means an empty field, never an error.

var patientNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PACIENTE[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ ]+)`),
	regexp.MustCompile(`(?i)NOMBRE[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ ]+)`),
}

var patientIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ID[:\s]*(\d+)`),
	regexp.MustCompile(`(?i)IDENTIFICACI[ÓO]N[:\s]*(\d+)`),
	regexp.MustCompile(`(?i)C[ÉE]DULA[:\s]*(\d+)`),
	regexp.MustCompile(`(?i)C\.C[:\s]*(\d+)`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)FECHA[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
}

var cityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)CIUDAD[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ ]+)`),
	regexp.MustCompile(`(?i)LUGAR[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ ]+)`),
}

var doctorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)M[ÉE]DICO[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ. ]+)`),
	regexp.MustCompile(`(?i)DOCTOR[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ. ]+)`),
	regexp.MustCompile(`(?i)DR\.[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ. ]+)`),
}

var procedurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PROCEDIMIENTO[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ., ]+)`),
	regexp.MustCompile(`(?i)CIRUG[ÍI]A[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ., ]+)`),
	regexp.MustCompile(`(?i)OPERACI[ÓO]N[:\s]*([A-Za-zÁÉÍÓÚÑáéíóúñ., ]+)`),
}

// firstMatch tries patterns in priority order and returns the trimmed
// first capture group of the first one that matches.
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return trimField(m[1])
		}
	}
	return ""
}

// extractDate finds a date and normalizes it to YYYY-MM-DD. A matched but
// unparsable date degrades to an empty field.
func extractDate(text string) string {
	for _, p := range datePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return normalizeDate(trimField(m[1]))
		}
	}
	return ""
}

var dateFormats = []string{"02/01/2006", "02-01-2006", "02/01/06", "02-01-06"}

func normalizeDate(s string) string {
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

var fieldTrim = regexp.MustCompile(`^[\s.,]+|[\s.,]+$`)

func trimField(s string) string {
	return fieldTrim.ReplaceAllString(s, "")
}
