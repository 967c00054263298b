package extract

import (
	"errors"
	"testing"

	"github.com/vgmedical/surgiverify/internal/record"
)

const baselineText = `ACTA DE GASTO QUIRURGICO
PACIENTE: Juan Pérez García
ID: 12345678
FECHA: 15/03/2024
CIUDAD: Bogotá
MÉDICO: Dr. Carlos Ruiz
PROCEDIMIENTO: Artrodesis lumbar
Tornillo encefálico 3.5x55mm (2) REF: ABC123 LOT: DEF456 [UDI]
Placa recta (1) REF: XYZ789 LOT: GHI012
`

func TestDocumentBaseline(t *testing.T) {
	rec, err := Document(record.VariantBaseline, baselineText, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.PatientName != "Juan Pérez García" {
		t.Errorf("patient name = %q, expected %q", rec.PatientName, "Juan Pérez García")
	}
	if rec.PatientID != "12345678" {
		t.Errorf("patient id = %q, expected %q", rec.PatientID, "12345678")
	}
	if rec.Date != "2024-03-15" {
		t.Errorf("date = %q, expected %q", rec.Date, "2024-03-15")
	}
	if rec.City != "Bogotá" {
		t.Errorf("city = %q, expected %q", rec.City, "Bogotá")
	}
	if rec.Procedure != "Artrodesis lumbar" {
		t.Errorf("procedure = %q, expected %q", rec.Procedure, "Artrodesis lumbar")
	}

	if len(rec.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(rec.LineItems))
	}
	first := rec.LineItems[0]
	if first.Name != "Tornillo encefálico 3.5x55mm" {
		t.Errorf("item name = %q, expected %q", first.Name, "Tornillo encefálico 3.5x55mm")
	}
	if first.Quantity != 2 {
		t.Errorf("item quantity = %d, expected 2", first.Quantity)
	}
	if first.RefCode != "ABC123" {
		t.Errorf("ref code = %q, expected %q", first.RefCode, "ABC123")
	}
	if first.LotCode != "DEF456" {
		t.Errorf("lot code = %q, expected %q", first.LotCode, "DEF456")
	}
	if !first.UDIPresent {
		t.Error("expected UDI present on first item")
	}

	second := rec.LineItems[1]
	if second.UDIPresent {
		t.Error("expected UDI absent on second item")
	}
	if second.RefCode != "XYZ789" || second.LotCode != "GHI012" {
		t.Errorf("second item codes = %q/%q, expected XYZ789/GHI012", second.RefCode, second.LotCode)
	}
}

func TestDocumentHospital(t *testing.T) {
	text := `HOJA DE GASTO
NOMBRE: Juan Pérez García
Tornillo encefalico 3.5x55mm (2)
Placa recta (1)
`
	rec, err := Document(record.VariantHospital, text, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(rec.LineItems))
	}
	if rec.LineItems[0].RefCode != "" {
		t.Errorf("hospital items carry no ref codes, got %q", rec.LineItems[0].RefCode)
	}
}

func TestDocumentDescription(t *testing.T) {
	text := `DESCRIPCION QUIRURGICA
PACIENTE: Juan Pérez García
Bajo anestesia general se realizó artrodesis lumbar.
MATERIALES: 2 tornillos encefalicos, 1 placa recta.
Sin complicaciones.`
	rec, err := Document(record.VariantDescription, text, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.LineItems) == 0 {
		t.Fatal("expected line items from MATERIALES section")
	}
	found := false
	for _, item := range rec.LineItems {
		if item.Quantity == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an item with quantity 2, got %+v", rec.LineItems)
	}
}

func TestDocumentDescriptionNoSections(t *testing.T) {
	rec, err := Document(record.VariantDescription, "Se realizó el procedimiento sin incidencias.", 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.LineItems) != 0 {
		t.Errorf("expected no line items, got %d", len(rec.LineItems))
	}
}

func TestDocumentMissingFieldsDegrade(t *testing.T) {
	rec, err := Document(record.VariantBaseline, "texto sin campos reconocibles", 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PatientName != "" || rec.PatientID != "" || rec.Date != "" {
		t.Errorf("expected empty fields, got %+v", rec)
	}
}

func TestDocumentUnknownVariant(t *testing.T) {
	_, err := Document(record.Variant("invoice"), "whatever", 1.0)
	if err == nil {
		t.Fatal("expected error for unknown variant")
	}
	var extractionErr *record.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Errorf("expected ExtractionError, got %T", err)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"15/03/2024", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"15/03/24", "2024-03-15"},
		{"31/02/2024", ""},
		{"no date", ""},
	}
	for _, tt := range tests {
		if got := normalizeDate(tt.input); got != tt.expected {
			t.Errorf("normalizeDate(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
