package snmp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/printkit/netdevice/pkg/asn1ber"
)

// WalkFunc receives each packet visited by a Walk. Returning an error stops
// the walk; the error is returned to the Walk caller.
type WalkFunc func(packet *asn1ber.Packet) error

// Walk enumerates the MIB subtree under prefix by issuing successive
// GetNextRequests, starting from the prefix itself. The walk completes when
// the agent returns an object name outside the prefix, or repeats the
// previous object name without advancing (a known pathology of buggy agents),
// or sets an error status. It returns the number of entries visited.
//
// An error status from the agent before anything was visited, or a transport
// failure, is a walk failure.
func (c *Conn) Walk(ctx context.Context, dest *net.UDPAddr, community string, prefix asn1ber.OID, timeout time.Duration, fn WalkFunc) (int, error) {
	count := 0
	current := prefix
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		id := c.NextRequestID()
		if err := c.Send(dest, community, asn1ber.GetNextRequest, id, current); err != nil {
			return count, err
		}
		packet, _, err := c.Receive(timeout)
		if err != nil {
			return count, err
		}
		if packet.RequestID != id {
			continue
		}
		if packet.ErrorStatus != 0 {
			if count == 0 {
				return 0, fmt.Errorf("agent %s returned error status %d", dest.IP, packet.ErrorStatus)
			}
			return count, nil
		}
		if !packet.Name.HasPrefix(prefix) || packet.Name.Equal(current) {
			return count, nil
		}
		count++
		if fn != nil {
			if err := fn(packet); err != nil {
				return count, err
			}
		}
		current = packet.Name
	}
}
