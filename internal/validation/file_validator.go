// Package validation checks uploaded files beyond their extension. The
// extension decides which parser runs, so a renamed file has to be caught
// before parsing by looking at the content signature.
package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// sniffLen is how many leading bytes are inspected.
const sniffLen = 512

var (
	zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	pdfSignature = []byte("%PDF")
)

// FileValidator checks that file content matches the declared format
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateFile reads the head of the file at path and verifies its content
// signature against the extension. xlsx files are zip archives, legacy xls
// files use the OLE compound format, pdf files start with a literal marker
// and csv files must look like text.
func (v *FileValidator) ValidateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file for validation: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read file for validation: %w", err)
	}
	head = head[:n]

	ext := strings.ToLower(filepath.Ext(path))
	if err := v.ValidateContent(ext, head); err != nil {
		v.logger.Warn("file content does not match extension",
			slog.String("file", filepath.Base(path)),
			slog.String("extension", ext))
		return err
	}
	return nil
}

// ValidateContent checks the leading bytes against the signature expected
// for the extension (with leading dot).
func (v *FileValidator) ValidateContent(ext string, head []byte) error {
	switch ext {
	case ".xlsx":
		if !bytes.HasPrefix(head, zipSignature) {
			return fmt.Errorf("content of %s file is not a zip archive", ext)
		}
	case ".xls":
		if !bytes.HasPrefix(head, oleSignature) {
			return fmt.Errorf("content of %s file is not an OLE document", ext)
		}
	case ".pdf":
		if !bytes.HasPrefix(head, pdfSignature) {
			return fmt.Errorf("content of %s file is not a pdf document", ext)
		}
	case ".csv":
		if len(head) == 0 {
			return fmt.Errorf("csv file is empty")
		}
		if bytes.IndexByte(head, 0x00) >= 0 {
			return fmt.Errorf("csv file contains binary data")
		}
	default:
		return fmt.Errorf("no content signature known for %q", ext)
	}
	return nil
}
