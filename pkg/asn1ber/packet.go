// Package asn1ber implements the subset of ASN.1 BER needed to speak SNMP v1:
// GetRequest, GetNextRequest and GetResponse PDUs carrying a single variable
// binding. It performs no I/O.
package asn1ber

import "errors"

// Universal tags used by SNMP v1.
const (
	tagBoolean     = 0x01
	tagInteger     = 0x02
	tagBitString   = 0x03
	tagOctetString = 0x04
	tagNull        = 0x05
	tagOID         = 0x06
	tagSequence    = 0x30
	tagIPAddress   = 0x40
	tagCounter     = 0x41
	tagGauge       = 0x42
	tagTimeTicks   = 0x43
)

// PDUType identifies the kind of SNMP message.
type PDUType byte

const (
	GetRequest     PDUType = 0xA0
	GetNextRequest PDUType = 0xA1
	GetResponse    PDUType = 0xA2
)

func (t PDUType) String() string {
	switch t {
	case GetRequest:
		return "GetRequest"
	case GetNextRequest:
		return "GetNextRequest"
	case GetResponse:
		return "GetResponse"
	}
	return "Unknown"
}

// Version1 is the only protocol version this codec speaks.
const Version1 = 0

// Protocol maxima. Encoding enforces them; decoding clamps to them.
const (
	MaxOIDLen         = 128
	MaxCommunityLen   = 512
	MaxOctetStringLen = 1024
	MaxPacketLen      = 1472
)

var ErrPacketTooLarge = errors.New("asn1ber: encoded packet exceeds maximum size")

// ValueKind enumerates the object value types SNMP v1 responses carry.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBoolean
	KindInteger
	KindOctetString
	KindOID
	KindIPAddress
	KindCounter
	KindGauge
	KindTimeTicks
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindOctetString:
		return "OctetString"
	case KindOID:
		return "OID"
	case KindIPAddress:
		return "IPAddress"
	case KindCounter:
		return "Counter"
	case KindGauge:
		return "Gauge"
	case KindTimeTicks:
		return "TimeTicks"
	}
	return "Unknown"
}

// Value is one typed object value. Only the field matching Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   int64
	Uint  uint32
	Bytes []byte
	OID   OID
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBoolean:
		return v.Bool == other.Bool
	case KindInteger:
		return v.Int == other.Int
	case KindCounter, KindGauge, KindTimeTicks:
		return v.Uint == other.Uint
	case KindOctetString, KindIPAddress:
		return string(v.Bytes) == string(other.Bytes)
	case KindOID:
		return v.OID.Equal(other.OID)
	}
	return true
}

// Packet is one decoded or to-be-encoded SNMP v1 message with a single
// variable binding. A Packet is owned entirely by its creator and is never
// shared between goroutines.
type Packet struct {
	Version     int
	Community   string
	Kind        PDUType
	RequestID   int
	ErrorStatus int
	ErrorIndex  int
	Name        OID
	Value       Value
}
