// Package extract turns stored documents into plain text.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/logging"
)

// Extractor returns the plain text of the document at path. It never fails:
// unreadable or unsupported documents yield "".
type Extractor interface {
	Extract(ctx context.Context, path string) string
}

// FileExtractor dispatches on file extension: PDFs go through the PDF
// parser, .txt and .md files are read as-is.
type FileExtractor struct {
	logger *zap.Logger
}

// New creates a FileExtractor.
func New(logger *zap.Logger) *FileExtractor {
	return &FileExtractor{logger: logging.OrNop(logger)}
}

// Extract implements Extractor.
func (e *FileExtractor) Extract(ctx context.Context, path string) string {
	if err := ctx.Err(); err != nil {
		return ""
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = pdfText(ctx, path)
	case ".txt", ".md", ".markdown":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		e.logger.Warn("text extraction failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return text
}

// pdfText concatenates the plain text of every readable page. Pages that
// fail to parse are skipped.
func pdfText(ctx context.Context, path string) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
	}
	return b.String(), nil
}
