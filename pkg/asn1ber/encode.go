package asn1ber

import "fmt"

// Encode serializes the packet. Encoding is all-or-nothing: a packet that
// violates a protocol maximum yields an error and no bytes.
func (p *Packet) Encode() ([]byte, error) {
	if len(p.Community) > MaxCommunityLen {
		return nil, fmt.Errorf("asn1ber: community name too long (%d octets)", len(p.Community))
	}
	if len(p.Name) > MaxOIDLen {
		return nil, fmt.Errorf("asn1ber: object name has too many arcs (%d)", len(p.Name))
	}
	if p.Value.Kind == KindOctetString && len(p.Value.Bytes) > MaxOctetStringLen {
		return nil, fmt.Errorf("asn1ber: octet string too long (%d octets)", len(p.Value.Bytes))
	}

	value, err := appendValue(nil, p.Value)
	if err != nil {
		return nil, err
	}

	var binding []byte
	binding = appendHeader(binding, tagOID, berOIDLen(p.Name))
	binding = p.Name.appendBER(binding)
	binding = append(binding, value...)

	var pdu []byte
	pdu = appendInteger(pdu, int64(p.RequestID))
	pdu = appendInteger(pdu, int64(p.ErrorStatus))
	pdu = appendInteger(pdu, int64(p.ErrorIndex))
	pdu = appendWrapped(pdu, tagSequence, appendWrapped(nil, tagSequence, binding))

	var body []byte
	body = appendInteger(body, int64(p.Version))
	body = appendHeader(body, tagOctetString, len(p.Community))
	body = append(body, p.Community...)
	body = appendWrapped(body, byte(p.Kind), pdu)

	out := appendWrapped(nil, tagSequence, body)
	if len(out) > MaxPacketLen {
		return nil, ErrPacketTooLarge
	}
	return out, nil
}

// appendWrapped appends content prefixed by a tag and length header to b.
// Used inner-out, so each layer's length is known when its header is written.
func appendWrapped(b []byte, tag byte, content []byte) []byte {
	b = appendHeader(b, tag, len(content))
	return append(b, content...)
}

// appendHeader appends a tag and a short- or long-form length.
func appendHeader(b []byte, tag byte, length int) []byte {
	b = append(b, tag)
	switch {
	case length < 0x80:
		b = append(b, byte(length))
	case length < 0x100:
		b = append(b, 0x81, byte(length))
	default:
		b = append(b, 0x82, byte(length>>8), byte(length))
	}
	return b
}

// appendInteger appends a tagged INTEGER using the minimal signed
// two's-complement octet count for its magnitude.
func appendInteger(b []byte, v int64) []byte {
	switch {
	case v >= -0x80 && v < 0x80:
		return append(b, tagInteger, 1, byte(v))
	case v >= -0x8000 && v < 0x8000:
		return append(b, tagInteger, 2, byte(v>>8), byte(v))
	case v >= -0x800000 && v < 0x800000:
		return append(b, tagInteger, 3, byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(b, tagInteger, 4, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}

// appendUnsigned appends a tagged base-256 unsigned value (Counter, Gauge,
// TimeTicks). A leading zero octet keeps values with the top bit set from
// reading back negative.
func appendUnsigned(b []byte, tag byte, v uint32) []byte {
	var content [5]byte
	n := 0
	switch {
	case v >= 0x80000000:
		content[0] = 0
		content[1] = byte(v >> 24)
		content[2] = byte(v >> 16)
		content[3] = byte(v >> 8)
		content[4] = byte(v)
		n = 5
	case v >= 0x1000000:
		content[0] = byte(v >> 24)
		content[1] = byte(v >> 16)
		content[2] = byte(v >> 8)
		content[3] = byte(v)
		n = 4
	case v >= 0x10000:
		content[0] = byte(v >> 16)
		content[1] = byte(v >> 8)
		content[2] = byte(v)
		n = 3
	case v >= 0x100:
		content[0] = byte(v >> 8)
		content[1] = byte(v)
		n = 2
	default:
		content[0] = byte(v)
		n = 1
	}
	b = append(b, tag, byte(n))
	return append(b, content[:n]...)
}

func appendValue(b []byte, v Value) ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return append(b, tagNull, 0), nil
	case KindBoolean:
		if v.Bool {
			return append(b, tagBoolean, 1, 1), nil
		}
		return append(b, tagBoolean, 1, 0), nil
	case KindInteger:
		return appendInteger(b, v.Int), nil
	case KindOctetString:
		b = appendHeader(b, tagOctetString, len(v.Bytes))
		return append(b, v.Bytes...), nil
	case KindOID:
		if len(v.OID) > MaxOIDLen {
			return nil, fmt.Errorf("asn1ber: OID value has too many arcs (%d)", len(v.OID))
		}
		b = appendHeader(b, tagOID, berOIDLen(v.OID))
		return v.OID.appendBER(b), nil
	case KindIPAddress:
		b = appendHeader(b, tagIPAddress, len(v.Bytes))
		return append(b, v.Bytes...), nil
	case KindCounter:
		return appendUnsigned(b, tagCounter, v.Uint), nil
	case KindGauge:
		return appendUnsigned(b, tagGauge, v.Uint), nil
	case KindTimeTicks:
		return appendUnsigned(b, tagTimeTicks, v.Uint), nil
	}
	return nil, fmt.Errorf("asn1ber: cannot encode value kind %d", v.Kind)
}

func berOIDLen(o OID) int {
	if len(o) == 0 {
		return 0
	}
	first := o[0] * 40
	if len(o) > 1 {
		first += o[1]
	}
	n := base128Len(uint64(first))
	for _, arc := range o[2:] {
		n += base128Len(uint64(arc))
	}
	return n
}

func base128Len(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
