package main

import (
	"fmt"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Datagram is one reassembled-enough UDP payload from a capture. Fragmented
// IP frames are reported with IsFragment set so the handler can skip them.
type Datagram struct {
	FrameNumber uint64
	IsFragment  bool
	SrcAddr     net.IPAddr
	DstAddr     net.IPAddr
	SrcPort     uint16
	DstPort     uint16
	Data        []byte
}

type DatagramHandler func(d *Datagram) error

// PlaybackUDPFromFile feeds every UDP datagram in a pcap file to handler, in
// capture order. Non-IP and non-UDP frames are skipped.
func PlaybackUDPFromFile(filename string, handler DatagramHandler) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := pcap.OpenOfflineFile(f)
	if err != nil {
		return fmt.Errorf("failed to create pcap reader: %w", err)
	}

	packetSource := gopacket.NewPacketSource(r, r.LinkType())
	d := &Datagram{}
	for packet := range packetSource.Packets() {
		d.FrameNumber++
		if ipV4 := packet.Layer(layers.LayerTypeIPv4); ipV4 != nil {
			ip := ipV4.(*layers.IPv4)
			d.IsFragment = ip.Flags&layers.IPv4MoreFragments != 0
			d.SrcAddr = net.IPAddr{IP: ip.SrcIP}
			d.DstAddr = net.IPAddr{IP: ip.DstIP}
		} else if ipV6 := packet.Layer(layers.LayerTypeIPv6); ipV6 != nil {
			ip := ipV6.(*layers.IPv6)
			d.IsFragment = false
			d.SrcAddr = net.IPAddr{IP: ip.SrcIP}
			d.DstAddr = net.IPAddr{IP: ip.DstIP}
		} else {
			continue
		}
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp := udpLayer.(*layers.UDP)
		d.SrcPort = uint16(udp.SrcPort)
		d.DstPort = uint16(udp.DstPort)
		d.Data = udp.Payload

		if err := handler(d); err != nil {
			return fmt.Errorf("failed to handle frame %d: %w", d.FrameNumber, err)
		}
	}

	return nil
}
