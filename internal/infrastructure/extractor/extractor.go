// Package extractor turns staged upload files into plain text, picking
// a format handler from the file extension.
package extractor

import (
	"context"
	"path/filepath"
	"strings"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".xlsx", ".xlsm":
		return extractWorkbook(path)
	default:
		return extractPlaintext(path)
	}
}
