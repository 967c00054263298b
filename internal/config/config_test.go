package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("port = %q, expected %q", cfg.Port, "8080")
	}
	if cfg.Env != "development" {
		t.Errorf("env = %q, expected %q", cfg.Env, "development")
	}
	if cfg.MaxUploadBytes != 26214400 {
		t.Errorf("max upload = %d, expected 26214400", cfg.MaxUploadBytes)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("port = %q, expected %q", cfg.Port, "9090")
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("max upload = %d, expected 1024", cfg.MaxUploadBytes)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "not-a-bool")

	cfg := Load()
	if cfg.MaxUploadBytes != 26214400 {
		t.Errorf("max upload = %d, expected the default", cfg.MaxUploadBytes)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected the default fallback setting")
	}
}

func TestValidateRequiresKeyInProduction(t *testing.T) {
	cfg := Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing API key in production")
	}

	cfg.APIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	dev := Config{Env: "development"}
	if err := dev.Validate(); err != nil {
		t.Errorf("development without key must validate: %v", err)
	}
}
