package security

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileValidator(t *testing.T) {
	fv := NewFileValidator()

	tests := []struct {
		name    string
		content []byte
		wantErr string
	}{
		{"php", []byte("<?php\nclass Foo {}\n"), ""},
		{"inline html", []byte("<html><body><?= $x ?></body></html>"), ""},
		{"empty", nil, ""},
		{"utf8 and tabs", []byte("<?php\n\t// café ✓\r\n"), ""},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "png"},
		{"zip", []byte("PK\x03\x04rest"), "zip"},
		{"pdf", []byte("%PDF-1.7\n"), "pdf"},
		{"nul byte", []byte("<?php\x00"), "binary"},
		{"control characters", bytes.Repeat([]byte{0x01, 0x02, 'a'}, 100), "binary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fv.Validate(tt.content)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFileValidatorOnlyInspectsHeader(t *testing.T) {
	fv := &FileValidator{HeaderSize: 16, BinaryRatio: 0.3}
	src := append([]byte("<?php echo 1;   "), 0x00, 0x01, 0x02)
	assert.NoError(t, fv.Validate(src))
}
