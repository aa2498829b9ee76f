package validation

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestValidateContent(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		ext     string
		head    []byte
		wantErr bool
	}{
		{"xlsx zip signature", ".xlsx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, false},
		{"xlsx wrong content", ".xlsx", []byte("city,revenue\n"), true},
		{"xls ole signature", ".xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, false},
		{"xls wrong content", ".xls", []byte{0x50, 0x4B, 0x03, 0x04}, true},
		{"pdf marker", ".pdf", []byte("%PDF-1.7\n"), false},
		{"pdf wrong content", ".pdf", []byte("PK"), true},
		{"csv plain text", ".csv", []byte("city;revenue\nMoscow;100\n"), false},
		{"csv with nul byte", ".csv", []byte{'a', 0x00, 'b'}, true},
		{"csv empty", ".csv", nil, true},
		{"unknown extension", ".exe", []byte("MZ"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateContent(tt.ext, tt.head)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFile(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a,b\n1,2\n"), 0644))
	assert.NoError(t, v.ValidateFile(csvPath))

	fakeXLSX := filepath.Join(dir, "data.xlsx")
	require.NoError(t, os.WriteFile(fakeXLSX, []byte("not a zip"), 0644))
	assert.Error(t, v.ValidateFile(fakeXLSX))

	assert.Error(t, v.ValidateFile(filepath.Join(dir, "missing.csv")))
}
