package asn1ber

import "fmt"

// Decode parses one SNMP v1 message from buf. The returned error, when not
// nil, names the first malformed required field; the packet is still returned
// with whatever fields were extracted before the error so callers can log it,
// but its contents are otherwise undefined. Truncated trailing fields are
// tolerated and decode to zero values.
func Decode(buf []byte) (*Packet, error) {
	packet := &Packet{Version: -1}
	c := &cursor{buf: buf}

	if c.readByte() != tagSequence {
		return packet, fmt.Errorf("packet does not start with SEQUENCE")
	}
	if _, definite := c.readLength(); !definite {
		return packet, fmt.Errorf("SEQUENCE uses indefinite length")
	}

	if c.readByte() != tagInteger {
		return packet, fmt.Errorf("packet version is not INTEGER")
	}
	length, definite := c.readLength()
	if !definite {
		return packet, fmt.Errorf("packet version uses indefinite length")
	}
	packet.Version = int(c.readInteger(length))
	if packet.Version != Version1 {
		return packet, fmt.Errorf("SNMP version %d not supported", packet.Version)
	}

	if c.readByte() != tagOctetString {
		return packet, fmt.Errorf("community name is not OCTET STRING")
	}
	if length, definite = c.readLength(); !definite {
		return packet, fmt.Errorf("community name uses indefinite length")
	}
	if length > MaxCommunityLen {
		return packet, fmt.Errorf("community name too long (%d octets)", length)
	}
	packet.Community = string(c.readBytes(length))

	kind := PDUType(c.readByte())
	switch kind {
	case GetRequest, GetNextRequest, GetResponse:
		packet.Kind = kind
	default:
		return packet, fmt.Errorf("packet kind 0x%02X is not a supported PDU", byte(kind))
	}
	if _, definite = c.readLength(); !definite {
		return packet, fmt.Errorf("PDU uses indefinite length")
	}

	var err error
	if packet.RequestID, err = c.requiredInteger("request-id"); err != nil {
		return packet, err
	}
	if packet.ErrorStatus, err = c.requiredInteger("error-status"); err != nil {
		return packet, err
	}
	if packet.ErrorIndex, err = c.requiredInteger("error-index"); err != nil {
		return packet, err
	}

	// Variable binding list header, then the single binding this codec
	// supports. Anything past the first binding is ignored.
	if c.readByte() != tagSequence {
		return packet, fmt.Errorf("variable binding list is not SEQUENCE")
	}
	if _, definite = c.readLength(); !definite {
		return packet, fmt.Errorf("variable binding list uses indefinite length")
	}
	if c.readByte() != tagSequence {
		return packet, fmt.Errorf("variable binding is not SEQUENCE")
	}
	if _, definite = c.readLength(); !definite {
		return packet, fmt.Errorf("variable binding uses indefinite length")
	}
	if c.readByte() != tagOID {
		return packet, fmt.Errorf("object name is not OID")
	}
	if length, definite = c.readLength(); !definite {
		return packet, fmt.Errorf("object name uses indefinite length")
	}
	packet.Name = c.readOID(length)

	decodeValue(c, packet)
	return packet, nil
}

// requiredInteger reads a mandatory INTEGER field, failing by name.
func (c *cursor) requiredInteger(field string) (int, error) {
	if c.readByte() != tagInteger {
		return 0, fmt.Errorf("%s is not INTEGER", field)
	}
	length, definite := c.readLength()
	if !definite {
		return 0, fmt.Errorf("%s uses indefinite length", field)
	}
	return int(c.readInteger(length)), nil
}

// decodeValue reads the object value. The value is a trailing field: a
// truncated or unrecognized value leaves a Null rather than failing the
// packet, since vendor agents routinely mangle it.
func decodeValue(c *cursor, packet *Packet) {
	if c.remaining() == 0 {
		packet.Value = Value{Kind: KindNull}
		return
	}
	tag := c.readByte()
	length, definite := c.readLength()
	if !definite {
		packet.Value = Value{Kind: KindNull}
		return
	}
	switch tag {
	case tagBoolean:
		packet.Value = Value{Kind: KindBoolean, Bool: c.readInteger(length) != 0}
	case tagInteger:
		packet.Value = Value{Kind: KindInteger, Int: c.readInteger(length)}
	case tagOctetString:
		if length > MaxOctetStringLen {
			length = MaxOctetStringLen
		}
		packet.Value = Value{Kind: KindOctetString, Bytes: append([]byte(nil), c.readBytes(length)...)}
	case tagOID:
		packet.Value = Value{Kind: KindOID, OID: c.readOID(length)}
	case tagIPAddress:
		packet.Value = Value{Kind: KindIPAddress, Bytes: append([]byte(nil), c.readBytes(length)...)}
	case tagCounter:
		packet.Value = Value{Kind: KindCounter, Uint: c.readUnsigned(length)}
	case tagGauge:
		packet.Value = Value{Kind: KindGauge, Uint: c.readUnsigned(length)}
	case tagTimeTicks:
		packet.Value = Value{Kind: KindTimeTicks, Uint: c.readUnsigned(length)}
	case tagNull:
		packet.Value = Value{Kind: KindNull}
		c.skip(length)
	default:
		packet.Value = Value{Kind: KindNull}
		c.skip(length)
	}
}
