package security

import (
	"bytes"
	"fmt"
)

// FileValidator rejects source files whose content is not text, such as
// images or archives that were saved with a .php extension.
type FileValidator struct {
	HeaderSize  int     // bytes inspected at the start of each file
	BinaryRatio float64 // share of control bytes above which content is binary
}

func NewFileValidator() *FileValidator {
	return &FileValidator{
		HeaderSize:  8 * 1024,
		BinaryRatio: 0.3,
	}
}

// File signatures that never start a PHP script.
var signatures = []struct {
	kind  string
	magic []byte
}{
	{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"gif", []byte("GIF8")},
	{"pdf", []byte("%PDF-")},
	{"zip", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip", []byte{0x1F, 0x8B}},
	{"elf", []byte{0x7F, 'E', 'L', 'F'}},
	{"pe", []byte("MZ")},
}

// Validate inspects the header of src.
func (fv *FileValidator) Validate(src []byte) error {
	header := src
	if len(header) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.magic) {
			return fmt.Errorf("content is %s data, not PHP source", sig.kind)
		}
	}
	if fv.isBinaryData(header) {
		return fmt.Errorf("content appears to be binary")
	}
	return nil
}

// isBinaryData counts control characters other than tab, LF, VT, FF and CR.
// A NUL byte is binary on its own.
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > fv.BinaryRatio
}
