// Package textenc decodes vendor-supplied description strings to UTF-8.
// Printers declare the character set of their localized strings through the
// Printer MIB localization table using IANA charset MIB enumeration values.
package textenc

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Charset is an IANA charset MIB enumeration value, as reported by
// prtLocalizationCharacterSet.
type Charset int

const (
	Unknown  Charset = 0
	ASCII    Charset = 3
	Latin1   Charset = 4
	ShiftJIS Charset = 17
	UTF8     Charset = 106
	UCS2     Charset = 1000
	UCS4     Charset = 1001
	UTF16BE  Charset = 1013
	UTF16LE  Charset = 1014
	UTF16    Charset = 1015
	UTF32    Charset = 1017
	UTF32BE  Charset = 1018
	UTF32LE  Charset = 1019
)

func (c Charset) String() string {
	switch c {
	case ASCII:
		return "US-ASCII"
	case Latin1:
		return "ISO-8859-1"
	case ShiftJIS:
		return "Shift_JIS"
	case UTF8:
		return "UTF-8"
	case UCS2:
		return "UCS-2"
	case UCS4:
		return "UCS-4"
	case UTF16BE:
		return "UTF-16BE"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16:
		return "UTF-16"
	case UTF32:
		return "UTF-32"
	case UTF32BE:
		return "UTF-32BE"
	case UTF32LE:
		return "UTF-32LE"
	}
	return "unknown"
}

// Decode converts data to UTF-8 according to the declared charset. It never
// fails: inputs in an unrecognized or undeclared charset pass through the
// best-effort ASCII filter, and decoder errors fall back to the same filter.
// UTF-16 surrogate pairs combine into supplementary code points; a lone
// surrogate becomes U+FFFD.
func Decode(data []byte, charset Charset) string {
	switch charset {
	case ASCII, UTF8:
		return string(data)
	case Latin1:
		return decodeWith(data, charmap.ISO8859_1)
	case ShiftJIS:
		return decodeWith(data, japanese.ShiftJIS)
	case UCS2, UTF16:
		return decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM))
	case UTF16BE:
		return decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	case UTF16LE:
		return decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	case UCS4, UTF32:
		return decodeWith(data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM))
	case UTF32BE:
		return decodeWith(data, utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM))
	case UTF32LE:
		return decodeWith(data, utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM))
	}
	return asciiFilter(data)
}

func decodeWith(data []byte, enc encoding.Encoding) string {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return asciiFilter(data)
	}
	return string(out)
}

// asciiFilter replaces every byte outside the printable ASCII range, or with
// the high bit set, with '?'.
func asciiFilter(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b < 0x20 || b >= 0x7F {
			b = '?'
		}
		out[i] = b
	}
	return string(out)
}
