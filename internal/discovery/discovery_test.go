package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

func snmpResponse(id int, source net.IP, name asn1ber.OID, value asn1ber.Value) (*asn1ber.Packet, *net.UDPAddr) {
	packet := &asn1ber.Packet{
		Version:   asn1ber.Version1,
		Community: "public",
		Kind:      asn1ber.GetResponse,
		RequestID: id,
		Name:      name,
		Value:     value,
	}
	return packet, &net.UDPAddr{IP: source, Port: snmp.Port}
}

func printerTypeValue() asn1ber.Value {
	return asn1ber.Value{Kind: asn1ber.KindOID, OID: snmp.HrDevicePrinter}
}

func octets(s string) asn1ber.Value {
	return asn1ber.Value{Kind: asn1ber.KindOctetString, Bytes: []byte(s)}
}

func testConn(t *testing.T) *snmp.Conn {
	t.Helper()
	conn, err := snmp.Open("udp4")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSNMPResponseHandling(t *testing.T) {
	d := NewContext()
	conn := testConn(t)
	set := newCandidateSet()
	extra := make(map[string]*snmpCandidate)
	source := net.IPv4(192, 168, 1, 40)

	packet, addr := snmpResponse(reqDeviceType, source, snmp.HrDeviceType, printerTypeValue())
	d.handleSNMPResponse(conn, set, extra, packet, addr)
	if set.count() != 1 {
		t.Fatalf("count = %d, want 1", set.count())
	}

	// Same source again: the record must be updated, never duplicated.
	packet, addr = snmpResponse(reqDeviceType, source, snmp.HrDeviceType, printerTypeValue())
	d.handleSNMPResponse(conn, set, extra, packet, addr)
	if set.count() != 1 {
		t.Errorf("count after duplicate = %d, want 1", set.count())
	}

	packet, addr = snmpResponse(reqSysName, source, snmp.SysName, octets("office-printer"))
	d.handleSNMPResponse(conn, set, extra, packet, addr)

	// Device-ID with an embedded newline, a known vendor bug.
	packet, addr = snmpResponse(reqDeviceID, source, snmp.HPDeviceID, octets("MFG:HP\nMDL:LaserJet 4000;"))
	d.handleSNMPResponse(conn, set, extra, packet, addr)

	packet, addr = snmpResponse(reqPort, source, snmp.LexmarkRawPort, asn1ber.Value{Kind: asn1ber.KindInteger, Int: 9100})
	d.handleSNMPResponse(conn, set, extra, packet, addr)

	c := set.get(source.String())
	if c == nil {
		t.Fatal("candidate missing")
	}
	if c.Name != "office-printer" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.DeviceID != "MFG:HP;MDL:LaserJet 4000;" {
		t.Errorf("DeviceID = %q", c.DeviceID)
	}
	if c.Port != 9100 {
		t.Errorf("Port = %d", c.Port)
	}
	if c.URI != "snmp://192.168.1.40" {
		t.Errorf("URI = %q", c.URI)
	}
}

func TestSNMPIgnoresNonPrinters(t *testing.T) {
	d := NewContext()
	conn := testConn(t)
	set := newCandidateSet()
	extra := make(map[string]*snmpCandidate)

	router := asn1ber.MustParseOID("1.3.6.1.2.1.25.3.1.1")
	packet, addr := snmpResponse(reqDeviceType, net.IPv4(192, 168, 1, 1), snmp.HrDeviceType,
		asn1ber.Value{Kind: asn1ber.KindOID, OID: router})
	d.handleSNMPResponse(conn, set, extra, packet, addr)
	if set.count() != 0 {
		t.Errorf("count = %d, want 0", set.count())
	}
}

func TestDNSSDEntryDedup(t *testing.T) {
	set := newCandidateSet()
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: *zeroconf.NewServiceRecord("Office Printer", ServiceType, ServiceDomain),
		HostName:      "printer.local.",
		Port:          9100,
		Text:          []string{"ty=EPSON WF-3820", "pdl=application/pdf,image/urf", "UUID=abc-123"},
	}
	applyEntry(set, entry)
	applyEntry(set, entry)
	if set.count() != 1 {
		t.Fatalf("count = %d, want 1", set.count())
	}
	c := set.get("Office Printer")
	if c.DeviceID != "MFG:EPSON;MDL:WF-3820;CMD:URF,ESCPL2;" {
		t.Errorf("DeviceID = %q", c.DeviceID)
	}
	if c.UUID != "abc-123" {
		t.Errorf("UUID = %q", c.UUID)
	}
	if c.Port != 9100 {
		t.Errorf("Port = %d", c.Port)
	}
}

func TestServiceURI(t *testing.T) {
	got := ServiceURI("Office Printer", "abc-123")
	want := "dnssd://Office%20Printer._pdl-datastream._tcp.local./?uuid=abc-123"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := ServiceURI("p", ""); got != "dnssd://p._pdl-datastream._tcp.local./" {
		t.Errorf("got %q", got)
	}
}

func TestConvergence(t *testing.T) {
	var conv convergence
	now := time.Now()
	if conv.stable(0, now) {
		t.Error("stable before any observation")
	}
	if conv.stable(2, now.Add(pollWindow)) {
		t.Error("stable immediately after growth")
	}
	if conv.stable(2, now.Add(pollWindow+settleTime/2)) {
		t.Error("stable before settle time")
	}
	if !conv.stable(2, now.Add(2*pollWindow+settleTime)) {
		t.Error("not stable after settle time")
	}
	if conv.stable(3, now.Add(3*pollWindow+settleTime)) {
		t.Error("stable right after new candidate")
	}
}

func TestCandidateHostPort(t *testing.T) {
	c := &Candidate{Address: net.IPv4(10, 0, 0, 5)}
	if got := c.HostPort(); got != "10.0.0.5:9100" {
		t.Errorf("got %q", got)
	}
	c.Port = 9400
	c.Host = "printer.local"
	if got := c.HostPort(); got != "printer.local:9400" {
		t.Errorf("got %q", got)
	}
}
