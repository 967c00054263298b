// Package textract turns uploaded document files into plain text for
// field extraction. Layout is deliberately discarded; the downstream
// extractors work on flat text with line boundaries preserved.
package textract

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/vgmedical/surgiverify/internal/record"
)

var errUnsupportedExtension = errors.New("unsupported file extension")

// Result is the output of text extraction. Confidence is nil when the
// source format carries no quality signal (native text formats); OCR-style
// sources may report a value in [0,1].
type Result struct {
	Text       string
	Confidence *float64
}

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(r io.Reader, filename string) (*Result, error)
}

// SupportedExtensions lists file extensions the service accepts.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".csv":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".xlsx":     true,
}

// Options tunes extractor construction.
type Options struct {
	// PDFFallbackPdftotext enables shelling out to pdftotext when the
	// native PDF reader fails.
	PDFFallbackPdftotext bool
}

// ForFile returns the extractor for a filename, or an ExtractionError
// for unsupported extensions.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".xlsx":
		return &XLSXExtractor{}, nil
	default:
		return nil, &record.ExtractionError{Kind: ext, Err: errUnsupportedExtension}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
