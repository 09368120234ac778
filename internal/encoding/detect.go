// Package encoding normalises uploaded text to UTF-8 before it is parsed.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected to pick a charset.
const sniffSize = 4096

const (
	UTF8    = "UTF-8"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	// Fallback is assumed when nothing better can be detected. Spreadsheet
	// exports on Windows are the usual source of non-UTF-8 uploads.
	Fallback = "windows-1252"
)

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// decoders maps a charset name, as reported by chardet, to its decoder.
var decoders = map[string]xenc.Encoding{
	UTF16LE:        unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:        unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// Reader is UTF-8 text decoded from an upload.
type Reader struct {
	io.Reader
	// Charset is the detected source charset.
	Charset string
}

// NewReader sniffs the start of r and returns a reader yielding UTF-8.
// A UTF-8 byte order mark is dropped.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.prefix) {
			continue
		}

		if bom.charset == UTF8 {
			_, _ = br.Discard(len(bom.prefix))
			return &Reader{Reader: br, Charset: UTF8}, nil
		}

		return decode(br, bom.charset), nil
	}

	return decode(br, detect(head, err == nil)), nil
}

func decode(r io.Reader, charset string) *Reader {
	enc, ok := decoders[charset]
	if !ok {
		return &Reader{Reader: r, Charset: UTF8}
	}

	return &Reader{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}

// Detect names the charset of a complete text sample.
func Detect(sample []byte) string {
	return detect(sample, false)
}

// detect drops a rune split by the end of a truncated sample before validating it.
func detect(sample []byte, truncated bool) string {
	if truncated {
		sample = trimPartialRune(sample)
	}

	if utf8.Valid(sample) {
		return UTF8
	}

	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		if res.Charset == UTF8 {
			return UTF8
		}

		if _, ok := decoders[res.Charset]; ok {
			return res.Charset
		}
	}

	return Fallback
}

func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}

			break
		}
	}

	return b
}
