package device

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/printkit/netdevice/internal/discovery"
	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

// fakeAgent is a synthetic SNMP agent over a sorted list of (OID, value)
// pairs. Get answers exact matches, GetNext answers the lexicographically
// next object, so both Device.Status queries and supply walks work against
// it.
type fakeAgent struct {
	mu    sync.Mutex
	pairs []agentPair
}

type agentPair struct {
	name  asn1ber.OID
	value asn1ber.Value
}

func oidLess(a, b asn1ber.OID) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (a *fakeAgent) set(name asn1ber.OID, value asn1ber.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.pairs {
		if a.pairs[i].name.Equal(name) {
			a.pairs[i].value = value
			return
		}
	}
	i := 0
	for i < len(a.pairs) && oidLess(a.pairs[i].name, name) {
		i++
	}
	a.pairs = append(a.pairs, agentPair{})
	copy(a.pairs[i+1:], a.pairs[i:])
	a.pairs[i] = agentPair{name: name.Clone(), value: value}
}

func (a *fakeAgent) setInt(name asn1ber.OID, v int64) {
	a.set(name, asn1ber.Value{Kind: asn1ber.KindInteger, Int: v})
}

func (a *fakeAgent) setString(name asn1ber.OID, s string) {
	a.set(name, asn1ber.Value{Kind: asn1ber.KindOctetString, Bytes: []byte(s)})
}

func (a *fakeAgent) respond(req *asn1ber.Packet) *asn1ber.Packet {
	a.mu.Lock()
	defer a.mu.Unlock()
	resp := &asn1ber.Packet{
		Version:   asn1ber.Version1,
		Community: req.Community,
		Kind:      asn1ber.GetResponse,
		RequestID: req.RequestID,
		Name:      req.Name,
		Value:     asn1ber.Value{Kind: asn1ber.KindNull},
	}
	switch req.Kind {
	case asn1ber.GetRequest:
		for _, p := range a.pairs {
			if p.name.Equal(req.Name) {
				resp.Name, resp.Value = p.name, p.value
				return resp
			}
		}
		resp.ErrorStatus = 2 // noSuchName
		resp.ErrorIndex = 1
	case asn1ber.GetNextRequest:
		for _, p := range a.pairs {
			if oidLess(req.Name, p.name) {
				resp.Name, resp.Value = p.name, p.value
				return resp
			}
		}
		resp.ErrorStatus = 2
		resp.ErrorIndex = 1
	default:
		return nil
	}
	return resp
}

// startDevice connects a Device to a fakeAgent served on loopback. The TCP
// data socket is not part of these tests, so only the status side is wired.
func startDevice(t *testing.T, agent *fakeAgent) *Device {
	t.Helper()
	pc, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })
	go func() {
		buf := make([]byte, asn1ber.MaxPacketLen)
		for {
			n, addr, err := pc.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := asn1ber.Decode(buf[:n])
			if err != nil {
				continue
			}
			resp := agent.respond(req)
			if resp == nil {
				continue
			}
			out, err := resp.Encode()
			if err != nil {
				continue
			}
			pc.WriteToUDP(out, addr)
		}
	}()

	conn, err := snmp.Open("udp4")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return &Device{
		uri:       "socket://127.0.0.1/",
		agent:     conn,
		agentTo:   pc.LocalAddr().(*net.UDPAddr),
		community: discovery.DefaultCommunity,
	}
}

func TestSupplyPercent(t *testing.T) {
	tests := []struct {
		name        string
		level       int
		maxCapacity int
		want        int
	}{
		{"percentage without capacity", 37, 0, 37},
		{"scaled against capacity", 50, 200, 25},
		{"both unknown", -3, -2, 50},
		{"negative level with capacity", -3, 200, 50},
		{"level above capacity clamps", 300, 200, 100},
		{"empty", 0, 200, 0},
		{"raw units without capacity", 4096, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := supplyPercent(tt.level, tt.maxCapacity); got != tt.want {
				t.Errorf("supplyPercent(%d, %d) = %d, want %d", tt.level, tt.maxCapacity, got, tt.want)
			}
		})
	}
}

func TestMapErrorState(t *testing.T) {
	tests := []struct {
		name string
		bits []byte
		want Reason
	}{
		{"empty", nil, 0},
		{"low paper", []byte{0x80}, ReasonMediaLow},
		{"no paper and jam", []byte{0x44}, ReasonMediaEmpty | ReasonMediaJam},
		{"service requested", []byte{0x01}, ReasonServiceNeeded},
		{"input tray empty maps to media empty", []byte{0x00, 0x04}, ReasonMediaEmpty},
		{"input tray missing", []byte{0x00, 0x80}, ReasonInputTrayMissing},
		{"toner pair", []byte{0x30}, ReasonMarkerSupplyLow | ReasonMarkerSupplyEmpty},
		{"offline", []byte{0x02}, ReasonOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorState(tt.bits); got != tt.want {
				t.Errorf("mapErrorState(%x) = %v, want %v", tt.bits, got, tt.want)
			}
		})
	}
}

func TestReasonString(t *testing.T) {
	if got := Reason(0).String(); got != "none" {
		t.Errorf("Reason(0) = %q", got)
	}
	if got := (ReasonMediaJam | ReasonDoorOpen).String(); got != "media-jam,door-open" {
		t.Errorf("combined = %q", got)
	}
}

func TestStatusMapsBitmap(t *testing.T) {
	agent := &fakeAgent{}
	agent.setString(snmp.HrPrinterDetectedErrorState, "\xC0")
	d := startDevice(t, agent)

	got := d.Status(context.Background())
	want := ReasonMediaLow | ReasonMediaEmpty
	if got != want {
		t.Errorf("Status() = %v, want %v", got, want)
	}
}

func TestSuppliesWalkAndRefresh(t *testing.T) {
	agent := &fakeAgent{}
	entry := snmp.PrtMarkerSuppliesEntry
	col := func(column, index int) asn1ber.OID {
		return entry.Child(column).Child(1).Child(index)
	}
	// Row 1: black toner scaled against a real capacity.
	agent.setInt(col(snmp.SuppliesColumnColorant, 1), 1)
	agent.setInt(col(snmp.SuppliesColumnClass, 1), int64(ClassConsumed))
	agent.setInt(col(snmp.SuppliesColumnType, 1), int64(TypeToner))
	agent.setString(col(snmp.SuppliesColumnDescription, 1), "Black Toner")
	agent.setInt(col(snmp.SuppliesColumnMaxCapacity, 1), 200)
	agent.setInt(col(snmp.SuppliesColumnLevel, 1), 50)
	// Row 2: cyan toner reporting a bare percentage.
	agent.setInt(col(snmp.SuppliesColumnColorant, 2), 2)
	agent.setInt(col(snmp.SuppliesColumnClass, 2), int64(ClassConsumed))
	agent.setInt(col(snmp.SuppliesColumnType, 2), int64(TypeToner))
	agent.setString(col(snmp.SuppliesColumnDescription, 2), "Cyan Toner")
	agent.setInt(col(snmp.SuppliesColumnMaxCapacity, 2), 0)
	agent.setInt(col(snmp.SuppliesColumnLevel, 2), 37)
	// Row 3: waste container with nothing usable.
	agent.setInt(col(snmp.SuppliesColumnColorant, 3), 0)
	agent.setInt(col(snmp.SuppliesColumnClass, 3), int64(ClassFilled))
	agent.setInt(col(snmp.SuppliesColumnType, 3), int64(TypeWasteToner))
	agent.setString(col(snmp.SuppliesColumnDescription, 3), "Waste Container")
	agent.setInt(col(snmp.SuppliesColumnMaxCapacity, 3), -2)
	agent.setInt(col(snmp.SuppliesColumnLevel, 3), -3)
	// Colorant names for rows 1 and 2.
	agent.setString(snmp.PrtMarkerColorantValue.Child(1), "black")
	agent.setString(snmp.PrtMarkerColorantValue.Child(2), "cyan")

	d := startDevice(t, agent)
	ctx := context.Background()

	records := d.Supplies(ctx, MaxSupplies)
	if len(records) != 3 {
		t.Fatalf("Supplies() returned %d records, want 3", len(records))
	}
	want := []SupplyRecord{
		{Index: 1, Colorant: 1, Class: ClassConsumed, Type: TypeToner, Description: "Black Toner", Color: "#000000", Level: 25},
		{Index: 2, Colorant: 2, Class: ClassConsumed, Type: TypeToner, Description: "Cyan Toner", Color: "#00FFFF", Level: 37},
		{Index: 3, Colorant: 0, Class: ClassFilled, Type: TypeWasteToner, Description: "Waste Container", Level: 50},
	}
	for i, w := range want {
		if records[i] != w {
			t.Errorf("record %d = %+v, want %+v", i, records[i], w)
		}
	}

	// A refresh walks only the level column: a changed level shows up, a
	// changed description does not.
	agent.setInt(col(snmp.SuppliesColumnLevel, 1), 20)
	agent.setString(col(snmp.SuppliesColumnDescription, 1), "Changed")
	records = d.Supplies(ctx, MaxSupplies)
	if records[0].Level != 10 {
		t.Errorf("refreshed level = %d, want 10", records[0].Level)
	}
	if records[0].Description != "Black Toner" {
		t.Errorf("refresh re-read the description column: %q", records[0].Description)
	}

	// max truncates after sorting by index.
	records = d.Supplies(ctx, 1)
	if len(records) != 1 || records[0].Index != 1 {
		t.Errorf("Supplies(1) = %+v, want one record with index 1", records)
	}
}

func TestIDQueriesAgent(t *testing.T) {
	agent := &fakeAgent{}
	agent.setString(snmp.PpmPrinterIEEE1284DeviceID, "MFG:Example;MDL:Widget 2000;CMD:PCL\nextra")
	d := startDevice(t, agent)

	got := d.ID(context.Background())
	want := "MFG:Example;MDL:Widget 2000;CMD:PCL;extra"
	if got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}
	// Cached on the handle afterwards.
	if d.deviceID != want {
		t.Errorf("deviceID not cached: %q", d.deviceID)
	}
}

func TestIDEmptyWhenAgentSilent(t *testing.T) {
	agent := &fakeAgent{}
	d := startDevice(t, agent)
	if got := d.ID(context.Background()); got != "" {
		t.Errorf("ID() = %q, want empty", got)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	dctx := discovery.NewContext()
	if _, err := Open(context.Background(), dctx, "http://example.local/", "job", nil); err == nil {
		t.Error("Open accepted an http URI")
	}
	if _, err := Open(context.Background(), dctx, "socket://%zz/", "job", nil); err == nil {
		t.Error("Open accepted an unparseable URI")
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		in   string
		host string
		port int
	}{
		{"printer.local:9101", "printer.local", 9101},
		{"printer.local", "printer.local", DefaultPort},
		{"10.0.0.7:0", "10.0.0.7", DefaultPort},
		{"[fe80::1]:9100", "fe80::1", 9100},
	}
	for _, tt := range tests {
		host, port := splitHostPort(tt.in)
		if host != tt.host || port != tt.port {
			t.Errorf("splitHostPort(%q) = %q, %d; want %q, %d", tt.in, host, port, tt.host, tt.port)
		}
	}
}
