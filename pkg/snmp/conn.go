// Package snmp provides the UDP transport for SNMP v1: a broadcast-capable
// socket, single request/response exchanges, and MIB subtree walking.
package snmp

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/printkit/netdevice/pkg/asn1ber"
)

// Port is the well-known SNMP query port.
const Port = 161

// Conn is a UDP socket for SNMP exchanges. A Conn is owned by one goroutine
// at a time; it carries no locks.
type Conn struct {
	udp       *net.UDPConn
	requestID int
}

// Open creates a UDP socket bound to an ephemeral local port with the
// broadcast option set. network is "udp4" or "udp6". A socket whose broadcast
// option cannot be set is closed and reported as an open failure.
func Open(network string) (*Conn, error) {
	lc := net.ListenConfig{Control: enableBroadcast}
	pc, err := lc.ListenPacket(context.Background(), network, ":0")
	if err != nil {
		return nil, fmt.Errorf("error opening SNMP socket: %v", err)
	}
	return &Conn{udp: pc.(*net.UDPConn)}, nil
}

func enableBroadcast(network, address string, c syscall.RawConn) error {
	var optErr error
	err := c.Control(func(fd uintptr) {
		optErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return optErr
}

func (c *Conn) Close() error {
	if c.udp == nil {
		return fmt.Errorf("connection already closed")
	}
	err := c.udp.Close()
	c.udp = nil
	return err
}

// NextRequestID returns a fresh request-id, monotonic for this Conn and
// always >= 1.
func (c *Conn) NextRequestID() int {
	c.requestID++
	return c.requestID
}

// Send encodes and sends one request carrying a Null value for oid to dest.
// A dest without a port goes to the well-known SNMP port.
func (c *Conn) Send(dest *net.UDPAddr, community string, kind asn1ber.PDUType, requestID int, oid asn1ber.OID) error {
	if requestID < 1 {
		return fmt.Errorf("request-id %d out of range", requestID)
	}
	packet := asn1ber.Packet{
		Version:   asn1ber.Version1,
		Community: community,
		Kind:      kind,
		RequestID: requestID,
		Name:      oid,
		Value:     asn1ber.Value{Kind: asn1ber.KindNull},
	}
	buf, err := packet.Encode()
	if err != nil {
		return err
	}
	addr := *dest
	if addr.Port == 0 {
		addr.Port = Port
	}
	if _, err := c.udp.WriteToUDP(buf, &addr); err != nil {
		return fmt.Errorf("error sending SNMP message: %v", err)
	}
	return nil
}

// Receive reads and decodes one GetResponse, returning it together with the
// sender's address. A negative timeout blocks indefinitely. Responses that
// fail to decode, carry the wrong version, or are not GetResponse PDUs are
// reported as errors; callers treat them as "no data", not as fatal.
func (c *Conn) Receive(timeout time.Duration) (*asn1ber.Packet, *net.UDPAddr, error) {
	if timeout >= 0 {
		c.udp.SetReadDeadline(time.Now().Add(timeout))
	} else {
		c.udp.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, asn1ber.MaxPacketLen)
	n, addr, err := c.udp.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	packet, err := asn1ber.Decode(buf[:n])
	if err != nil {
		return nil, addr, fmt.Errorf("malformed response from %s: %v", addr.IP, err)
	}
	if packet.Kind != asn1ber.GetResponse {
		return nil, addr, fmt.Errorf("unexpected %s from %s", packet.Kind, addr.IP)
	}
	return packet, addr, nil
}

// Get performs one GetRequest/GetResponse exchange with dest, discarding any
// stale responses with older request-ids that may still be queued.
func (c *Conn) Get(ctx context.Context, dest *net.UDPAddr, community string, oid asn1ber.OID, timeout time.Duration) (*asn1ber.Packet, error) {
	id := c.NextRequestID()
	if err := c.Send(dest, community, asn1ber.GetRequest, id, oid); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timeout waiting for response from %s", dest.IP)
		}
		packet, _, err := c.Receive(remaining)
		if err != nil {
			return nil, err
		}
		if packet.RequestID == id {
			return packet, nil
		}
	}
}
