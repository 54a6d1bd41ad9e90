package asn1ber

import (
	"fmt"
	"strconv"
	"strings"
)

// OID is an object identifier, a sequence of non-negative arcs.
type OID []int

// ParseOID parses a dotted OID string such as "1.3.6.1.2.1.43.11.1.1".
// A single leading dot is tolerated.
func ParseOID(s string) (OID, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, fmt.Errorf("empty OID")
	}
	parts := strings.Split(s, ".")
	if len(parts) > MaxOIDLen {
		return nil, fmt.Errorf("OID has %d arcs, maximum is %d", len(parts), MaxOIDLen)
	}
	oid := make(OID, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid OID arc %q", part)
		}
		oid[i] = n
	}
	return oid, nil
}

// MustParseOID is ParseOID for compile-time constants.
func MustParseOID(s string) OID {
	oid, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return oid
}

func (o OID) String() string {
	var sb strings.Builder
	for i, arc := range o {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(arc))
	}
	return sb.String()
}

// Equal reports whether two OIDs have identical arc sequences.
func (o OID) Equal(other OID) bool {
	if len(o) != len(other) {
		return false
	}
	for i, arc := range o {
		if arc != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether o begins with the given prefix.
func (o OID) HasPrefix(prefix OID) bool {
	if len(o) < len(prefix) {
		return false
	}
	return o[:len(prefix)].Equal(prefix)
}

// Child returns o with extra arcs appended, without aliasing o's backing array.
func (o OID) Child(arcs ...int) OID {
	child := make(OID, 0, len(o)+len(arcs))
	child = append(child, o...)
	child = append(child, arcs...)
	return child
}

// Clone returns an independent copy of o.
func (o OID) Clone() OID {
	if o == nil {
		return nil
	}
	c := make(OID, len(o))
	copy(c, o)
	return c
}

// appendBER appends the BER content octets of o (no tag or length header).
// The first two arcs are packed into one base-128 value as arc0*40+arc1; a
// one-arc OID encodes arc0*40 alone. Remaining arcs follow as independent
// base-128 values with the continuation bit on all but the final octet.
func (o OID) appendBER(b []byte) []byte {
	if len(o) == 0 {
		return b
	}
	first := o[0] * 40
	if len(o) > 1 {
		first += o[1]
	}
	b = appendBase128(b, uint64(first))
	for _, arc := range o[2:] {
		b = appendBase128(b, uint64(arc))
	}
	return b
}

func appendBase128(b []byte, v uint64) []byte {
	if v < 0x80 {
		return append(b, byte(v))
	}
	var tmp [10]byte
	n := 0
	for v > 0 {
		tmp[n] = byte(v & 0x7F)
		v >>= 7
		n++
	}
	for i := n - 1; i > 0; i-- {
		b = append(b, tmp[i]|0x80)
	}
	return append(b, tmp[0])
}
