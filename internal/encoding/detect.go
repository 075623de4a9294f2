package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLen = 4096

// NewUTF8Reader wraps r so that its content comes out as UTF-8 regardless of
// the export's original encoding. Bank and spreadsheet CSV exports are
// commonly UTF-16 or Windows-1252.
//
// Detection order: BOM, valid UTF-8 as-is, chardet heuristics, then a
// Windows-1252 fallback.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if dec, skip := bomDecoder(head); skip > 0 || dec != nil {
		if skip > 0 {
			_, _ = br.Discard(skip)
		}

		if dec == nil {
			return br, nil
		}

		return transform.NewReader(br, dec.NewDecoder()), nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if dec := sniffCharset(head); dec != nil {
		return transform.NewReader(br, dec.NewDecoder()), nil
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

// bomDecoder inspects a byte-order mark. A non-zero skip with a nil encoding
// means the BOM should be stripped and the rest read as-is (UTF-8).
func bomDecoder(head []byte) (encoding.Encoding, int) {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return nil, 3
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), 0
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), 0
	}

	return nil, 0
}

func sniffCharset(head []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return nil
	}

	switch result.Charset {
	case "ISO-8859-1", "windows-1252":
		return charmap.Windows1252
	case "ISO-8859-9":
		return charmap.ISO8859_9
	}

	return nil
}
