// Snmp-replay decodes the SNMP traffic in a pcap capture, for offline
// debugging of vendor agents that answer discovery queries strangely.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

func main() {
	dump := flag.Bool("hex", false, "hex-dump each datagram before decoding")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: snmp-replay [-hex] capture.pcap\n")
		os.Exit(2)
	}

	err := PlaybackUDPFromFile(flag.Arg(0), func(d *Datagram) error {
		if d.IsFragment {
			fmt.Printf("Frame %d: fragmented, skipped\n", d.FrameNumber)
			return nil
		}
		if d.SrcPort != snmp.Port && d.DstPort != snmp.Port {
			return nil
		}
		fmt.Printf("Frame %d: %s:%d -> %s:%d\n", d.FrameNumber, d.SrcAddr.IP, d.SrcPort, d.DstAddr.IP, d.DstPort)
		if *dump {
			for _, line := range strings.Split(hex.Dump(d.Data), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
		packet, err := asn1ber.Decode(d.Data)
		if err != nil {
			fmt.Printf("      undecodable: %v\n", err)
			return nil
		}
		printPacket(packet)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printPacket(p *asn1ber.Packet) {
	fmt.Printf("      %s community=%q request-id=%d\n", p.Kind, p.Community, p.RequestID)
	if p.ErrorStatus != 0 {
		fmt.Printf("      error=%d index=%d\n", p.ErrorStatus, p.ErrorIndex)
	}
	if len(p.Name) > 0 {
		fmt.Printf("      %s = %s %v\n", p.Name, p.Value.Kind, valueText(&p.Value))
	}
}

func valueText(v *asn1ber.Value) any {
	switch v.Kind {
	case asn1ber.KindBoolean:
		return v.Bool
	case asn1ber.KindInteger:
		return v.Int
	case asn1ber.KindCounter, asn1ber.KindGauge, asn1ber.KindTimeTicks:
		return v.Uint
	case asn1ber.KindOctetString, asn1ber.KindIPAddress:
		return fmt.Sprintf("%q", v.Bytes)
	case asn1ber.KindOID:
		return v.OID.String()
	}
	return ""
}
