package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/printkit/netdevice/internal/ieee1284"
	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

// Fixed request-ids tag the purpose of each discovery query, so responses
// from many agents can share one socket and still be dispatched correctly.
const (
	reqDeviceType = 1
	reqDeviceID   = 2
	reqSysName    = 3
	reqPort       = 4
	reqDeviceDesc = 5
)

// deviceIDOIDs are queried unconditionally against every responder; the
// agent's vendor is unknown up front.
var deviceIDOIDs = []asn1ber.OID{
	snmp.PpmPrinterIEEE1284DeviceID,
	snmp.HPDeviceID,
	snmp.LexmarkDeviceID,
	snmp.RicohDeviceID,
}

var rawPortOIDs = []asn1ber.OID{
	snmp.LexmarkRawPort,
	snmp.PWGRawPort,
}

// snmpCandidate carries SNMP-specific accumulation state alongside the
// published candidate.
type snmpCandidate struct {
	*Candidate
	description string
}

// DiscoverSNMP broadcasts a device-type query on every broadcast-capable
// interface and reports printers that answer. The call blocks until the
// candidate count stops growing or the ceiling elapses, then runs the
// terminal callback loop. A discovery that finds nothing is not an error.
func (d *Context) DiscoverSNMP(ctx context.Context, cb Callback, errCB ErrorFunc) error {
	conn, err := snmp.Open("udp4")
	if err != nil {
		errCB.report("Unable to open SNMP socket: %v", err)
		return err
	}
	defer conn.Close()

	broadcasts, err := broadcastAddrs()
	if err != nil {
		errCB.report("Unable to enumerate network interfaces: %v", err)
		return err
	}
	for _, dest := range broadcasts {
		if err := conn.Send(dest, d.community, asn1ber.GetRequest, reqDeviceType, snmp.HrDeviceType); err != nil {
			errCB.report("Unable to query %s: %v", dest.IP, err)
		}
		packetsSent.WithLabelValues("snmp").Inc()
	}

	deadline := time.Now().Add(d.snmpCeiling)
	set := newCandidateSet()
	extra := make(map[string]*snmpCandidate)
	var conv convergence

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		packet, addr, err := conn.Receive(pollWindow)
		if err != nil {
			if conv.stable(set.count(), time.Now()) {
				break
			}
			continue
		}
		packetsReceived.WithLabelValues("snmp").Inc()
		d.handleSNMPResponse(conn, set, extra, packet, addr)
	}

	for _, c := range set.sorted() {
		sc := extra[c.Address.String()]
		// LPD and IPP ports are never raw-socket-capable.
		if c.Port == 515 || c.Port == 631 {
			continue
		}
		id := ieee1284.Parse(c.DeviceID)
		c.Info = ieee1284.Description(id.Manufacturer, id.Model)
		if c.Info == "" && sc != nil {
			c.Info = sc.description
		}
		if c.Info == "" {
			c.Info = c.Name
		}
		candidatesFound.WithLabelValues("snmp").Inc()
		if cb != nil && cb(c) {
			break
		}
	}
	return nil
}

// handleSNMPResponse dispatches one response by its request-id purpose tag.
// The first device-type response from an address registers the candidate and
// fans out the follow-up queries; later responses update it in place.
func (d *Context) handleSNMPResponse(conn *snmp.Conn, set *candidateSet, extra map[string]*snmpCandidate, packet *asn1ber.Packet, addr *net.UDPAddr) {
	key := addr.IP.String()
	switch packet.RequestID {
	case reqDeviceType:
		if packet.Value.Kind != asn1ber.KindOID || !packet.Value.OID.Equal(snmp.HrDevicePrinter) {
			return
		}
		c, created := set.lookup(key)
		if !created {
			return
		}
		c.Address = append(net.IP(nil), addr.IP...)
		c.URI = "snmp://" + key
		c.Name = key
		extra[key] = &snmpCandidate{Candidate: c}
		dest := &net.UDPAddr{IP: addr.IP, Port: snmp.Port}
		conn.Send(dest, d.community, asn1ber.GetRequest, reqSysName, snmp.SysName)
		conn.Send(dest, d.community, asn1ber.GetRequest, reqDeviceDesc, snmp.HrDeviceDescr)
		for _, oid := range deviceIDOIDs {
			conn.Send(dest, d.community, asn1ber.GetRequest, reqDeviceID, oid)
		}
		for _, oid := range rawPortOIDs {
			conn.Send(dest, d.community, asn1ber.GetRequest, reqPort, oid)
		}
	case reqSysName:
		if c := set.get(key); c != nil && packet.Value.Kind == asn1ber.KindOctetString {
			if name := string(packet.Value.Bytes); name != "" {
				c.Name = name
			}
		}
	case reqDeviceDesc:
		if sc := extra[key]; sc != nil && packet.Value.Kind == asn1ber.KindOctetString {
			sc.description = string(packet.Value.Bytes)
		}
	case reqDeviceID:
		if c := set.get(key); c != nil && packet.Value.Kind == asn1ber.KindOctetString {
			id := ieee1284.Normalize(string(packet.Value.Bytes))
			if len(id) > len(c.DeviceID) {
				c.DeviceID = id
			}
		}
	case reqPort:
		if c := set.get(key); c != nil && packet.Value.Kind == asn1ber.KindInteger && packet.Value.Int > 0 {
			c.Port = int(packet.Value.Int)
			c.Host = key
		}
	}
}

// broadcastAddrs computes the broadcast address of every interface that is
// up and broadcast-capable.
func broadcastAddrs() ([]*net.UDPAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []*net.UDPAddr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP.To4()
			if ip == nil {
				continue
			}
			mask := net.IP(ipnet.Mask).To4()
			if mask == nil {
				continue
			}
			bcast := make(net.IP, 4)
			for i := range bcast {
				bcast[i] = ip[i] | ^mask[i]
			}
			out = append(out, &net.UDPAddr{IP: bcast, Port: snmp.Port})
		}
	}
	return out, nil
}

// HostPort renders the raw-socket endpoint of an SNMP candidate, defaulting
// to the conventional appsocket port.
func (c *Candidate) HostPort() string {
	host := c.Host
	if host == "" {
		if c.Address != nil {
			host = c.Address.String()
		} else {
			host = c.Name
		}
	}
	port := c.Port
	if port == 0 {
		port = 9100
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
