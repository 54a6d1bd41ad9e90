package asn1ber

// cursor reads BER primitives from a byte buffer. Every read is clamped to
// the end of the buffer: a truncated primitive yields a zero or partial value
// and never advances past the end. Whether truncation is an error is the
// caller's decision, made per field.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// truncated reports whether fewer than n bytes remain.
func (c *cursor) truncated(n int) bool {
	return c.remaining() < n
}

func (c *cursor) readByte() byte {
	if c.off >= len(c.buf) {
		return 0
	}
	b := c.buf[c.off]
	c.off++
	return b
}

func (c *cursor) peekByte() byte {
	if c.off >= len(c.buf) {
		return 0
	}
	return c.buf[c.off]
}

// readBytes returns up to n bytes, fewer if the buffer ends first.
func (c *cursor) readBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	if rem := c.remaining(); n > rem {
		n = rem
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) skip(n int) {
	if rem := c.remaining(); n > rem {
		n = rem
	}
	c.off += n
}

// readLength reads a BER length field. The second result is false for the
// indefinite form (0x80), which SNMP never uses. Long forms beyond four
// length octets are clamped to the remaining buffer.
func (c *cursor) readLength() (int, bool) {
	b := c.readByte()
	if b < 0x80 {
		return int(b), true
	}
	count := int(b & 0x7F)
	if count == 0 {
		return 0, false
	}
	length := 0
	for i := 0; i < count && i < 4; i++ {
		length = length<<8 | int(c.readByte())
	}
	if length > c.remaining() {
		length = c.remaining()
	}
	return length, true
}

// readInteger reads length content octets as a signed two's-complement value.
func (c *cursor) readInteger(length int) int64 {
	content := c.readBytes(length)
	if len(content) == 0 {
		return 0
	}
	v := int64(content[0])
	if content[0]&0x80 != 0 {
		v -= 0x100
	}
	for _, b := range content[1:] {
		v = v<<8 | int64(b)
	}
	return v
}

// readUnsigned reads length content octets as an unsigned base-256 value,
// as used by Counter, Gauge and TimeTicks.
func (c *cursor) readUnsigned(length int) uint32 {
	content := c.readBytes(length)
	var v uint32
	for _, b := range content {
		v = v<<8 | uint32(b)
	}
	return v
}

// readOID reads length content octets as an object identifier. The leading
// packed value expands to two arcs; at most MaxOIDLen arcs are kept and any
// excess content is consumed and discarded.
func (c *cursor) readOID(length int) OID {
	end := c.off + length
	if end > len(c.buf) {
		end = len(c.buf)
	}
	var oid OID
	for c.off < end {
		v := c.readBase128(end)
		if len(oid) == 0 {
			switch {
			case v < 40:
				oid = append(oid, 0, int(v))
			case v < 80:
				oid = append(oid, 1, int(v-40))
			default:
				oid = append(oid, 2, int(v-80))
			}
			continue
		}
		if len(oid) < MaxOIDLen {
			oid = append(oid, int(v))
		}
	}
	return oid
}

func (c *cursor) readBase128(end int) uint64 {
	var v uint64
	for c.off < end {
		b := c.buf[c.off]
		c.off++
		v = v<<7 | uint64(b&0x7F)
		if b&0x80 == 0 {
			break
		}
	}
	return v
}
