// Package encoding normalises chart files exported by spreadsheet tools to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected before deciding.
const sniffSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Charset names reported by Detect.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
)

// NewUTF8Reader wraps r so that it yields UTF-8 regardless of the source
// encoding. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Detect(r)
	return out, err
}

// Detect inspects the start of r and returns a UTF-8 reader over the whole
// input together with the charset it settled on. BOMs win; valid UTF-8 is
// passed through; otherwise chardet guesses, falling back to Windows-1252.
func Detect(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("sniffing encoding: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, utf8BOM):
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, "", fmt.Errorf("skipping BOM: %w", err)
		}
		return br, UTF8, nil
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), UTF16LE, nil
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), UTF16BE, nil
	case utf8.Valid(trimPartialRune(head)):
		return br, UTF8, nil
	}

	if best, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		switch best.Charset {
		case "UTF-8":
			return br, UTF8, nil
		case "ISO-8859-9":
			return decode(br, charmap.ISO8859_9), ISO88599, nil
		}
	}
	return decode(br, charmap.Windows1252), Windows1252, nil
}

func decode(r io.Reader, enc xencoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window so
// a valid UTF-8 file longer than the window is not misclassified.
func trimPartialRune(b []byte) []byte {
	if len(b) < sniffSize {
		return b
	}
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}
