package source

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns raw bytes into text: UTF-8 first, then UTF-16 (BOM honoured, little endian otherwise).
func Decode(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}
	if len(raw)%2 != 0 {
		return "", fmt.Errorf("%w: odd byte count for UTF-16", ErrUnreadable)
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", fmt.Errorf("%w: invalid UTF-16 sequence", ErrUnreadable)
	}
	return s, nil
}
