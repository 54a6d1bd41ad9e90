package device

import (
	"context"

	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

// Reason is a set of printer-state-reasons bits.
type Reason uint32

const (
	ReasonMediaLow Reason = 1 << iota
	ReasonMediaEmpty
	ReasonMediaJam
	ReasonMarkerSupplyLow
	ReasonMarkerSupplyEmpty
	ReasonDoorOpen
	ReasonInputTrayMissing
	ReasonOffline
	ReasonServiceNeeded
)

func (r Reason) String() string {
	names := []struct {
		bit  Reason
		name string
	}{
		{ReasonMediaLow, "media-low"},
		{ReasonMediaEmpty, "media-empty"},
		{ReasonMediaJam, "media-jam"},
		{ReasonMarkerSupplyLow, "marker-supply-low"},
		{ReasonMarkerSupplyEmpty, "marker-supply-empty"},
		{ReasonDoorOpen, "door-open"},
		{ReasonInputTrayMissing, "input-tray-missing"},
		{ReasonOffline, "offline"},
		{ReasonServiceNeeded, "service-needed"},
	}
	out := ""
	for _, n := range names {
		if r&n.bit == 0 {
			continue
		}
		if out != "" {
			out += ","
		}
		out += n.name
	}
	if out == "" {
		return "none"
	}
	return out
}

// hrPrinterDetectedErrorState bit positions, numbered from the most
// significant bit of the first octet (RFC 2790).
const (
	bitLowPaper = iota
	bitNoPaper
	bitLowToner
	bitNoToner
	bitDoorOpen
	bitJammed
	bitOffline
	bitServiceRequested
	bitInputTrayMissing
	bitOutputTrayMissing
	bitMarkerSupplyMissing
	bitOutputNearFull
	bitOutputFull
	bitInputTrayEmpty
)

// Status queries the printer's detected-error-state bitmap and maps the
// known bits into reasons. Status is best-effort telemetry: any protocol
// failure yields no reasons rather than an error.
func (d *Device) Status(ctx context.Context) Reason {
	packet, err := d.agent.Get(ctx, d.agentTo, d.community, snmp.HrPrinterDetectedErrorState, statusTimeout)
	if err != nil || packet.ErrorStatus != 0 || packet.Value.Kind != asn1ber.KindOctetString {
		return 0
	}
	return mapErrorState(packet.Value.Bytes)
}

func mapErrorState(bits []byte) Reason {
	set := func(bit int) bool {
		octet := bit / 8
		if octet >= len(bits) {
			return false
		}
		return bits[octet]&(0x80>>(bit%8)) != 0
	}
	var r Reason
	if set(bitLowPaper) {
		r |= ReasonMediaLow
	}
	if set(bitNoPaper) || set(bitInputTrayEmpty) {
		r |= ReasonMediaEmpty
	}
	if set(bitLowToner) {
		r |= ReasonMarkerSupplyLow
	}
	if set(bitNoToner) {
		r |= ReasonMarkerSupplyEmpty
	}
	if set(bitDoorOpen) {
		r |= ReasonDoorOpen
	}
	if set(bitJammed) {
		r |= ReasonMediaJam
	}
	if set(bitOffline) {
		r |= ReasonOffline
	}
	if set(bitServiceRequested) {
		r |= ReasonServiceNeeded
	}
	if set(bitInputTrayMissing) {
		r |= ReasonInputTrayMissing
	}
	return r
}
