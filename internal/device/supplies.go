package device

import (
	"context"
	"sort"
	"strings"

	"github.com/printkit/netdevice/internal/genericutils"
	"github.com/printkit/netdevice/internal/textenc"
	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

// MaxSupplies bounds the supply table per device.
const MaxSupplies = 32

// SupplyClass is the prtMarkerSuppliesClass enumeration.
type SupplyClass int

const (
	ClassOther    SupplyClass = 1
	ClassConsumed SupplyClass = 3
	ClassFilled   SupplyClass = 4
)

// SupplyType is the prtMarkerSuppliesType enumeration.
type SupplyType int

const (
	TypeOther          SupplyType = 1
	TypeUnknown        SupplyType = 2
	TypeToner          SupplyType = 3
	TypeWasteToner     SupplyType = 4
	TypeInk            SupplyType = 5
	TypeInkCartridge   SupplyType = 6
	TypeInkRibbon      SupplyType = 7
	TypeWasteInk       SupplyType = 8
	TypeOPC            SupplyType = 9
	TypeDeveloper      SupplyType = 10
	TypeFuserOil       SupplyType = 11
	TypeSolidWax       SupplyType = 12
	TypeFuser          SupplyType = 15
	TypeTransferUnit   SupplyType = 20
	TypeTonerCartridge SupplyType = 21
	TypeWater          SupplyType = 23
	TypeWasteWater     SupplyType = 24
	TypeWastePaper     SupplyType = 26
	TypeStaples        SupplyType = 32
)

func (t SupplyType) String() string {
	switch t {
	case TypeToner:
		return "toner"
	case TypeWasteToner:
		return "waste-toner"
	case TypeInk:
		return "ink"
	case TypeInkCartridge:
		return "ink-cartridge"
	case TypeInkRibbon:
		return "ink-ribbon"
	case TypeWasteInk:
		return "waste-ink"
	case TypeOPC:
		return "opc"
	case TypeDeveloper:
		return "developer"
	case TypeFuserOil:
		return "fuser-oil"
	case TypeSolidWax:
		return "solid-wax"
	case TypeFuser:
		return "fuser"
	case TypeTransferUnit:
		return "transfer-unit"
	case TypeTonerCartridge:
		return "toner-cartridge"
	case TypeWater:
		return "water"
	case TypeWasteWater:
		return "waste-water"
	case TypeWastePaper:
		return "waste-paper"
	case TypeStaples:
		return "staples"
	}
	return "unknown"
}

// SupplyRecord is one row of the device's supply table, as reported to the
// caller.
type SupplyRecord struct {
	Index       int
	Colorant    int
	Class       SupplyClass
	Type        SupplyType
	Description string
	Color       string
	// Level is the unit-normalized fill percentage, 0-100.
	Level int
}

// supplyState accumulates column values for one conceptual table row across
// the several PDUs a walk delivers. It lives as long as the device handle:
// later level-only walks refresh rawLevel in place.
type supplyState struct {
	SupplyRecord
	rawLevel    int
	maxCapacity int
}

type supplyTable struct {
	rows   map[int]*supplyState
	walked bool
}

// placeholderLevel is reported when neither a usable capacity nor a
// percentage-like level is available, to avoid claiming false certainty.
const placeholderLevel = 50

// supplyPercent normalizes a raw level against the row's maximum capacity.
// Without a usable capacity, a level that already looks like a percentage is
// taken as one; anything else yields the placeholder.
func supplyPercent(level, maxCapacity int) int {
	if level >= 0 && maxCapacity > 0 {
		return genericutils.Clamp(100*level/maxCapacity, 0, 100)
	}
	if level >= 0 && level <= 100 {
		return level
	}
	return placeholderLevel
}

// Supplies walks the device's supply tables and returns up to max records.
// The first call walks the full supplies table; later calls refresh only the
// level column plus the colorant names. Partial state from a failed walk is
// simply stale until the next successful walk overwrites it.
func (d *Device) Supplies(ctx context.Context, max int) []SupplyRecord {
	if d.supplies.rows == nil {
		d.supplies.rows = make(map[int]*supplyState)
	}
	charset := d.charsetFor(ctx)

	if !d.supplies.walked {
		count, err := d.agent.Walk(ctx, d.agentTo, d.community, snmp.PrtMarkerSuppliesEntry, statusTimeout, func(p *asn1ber.Packet) error {
			d.supplies.apply(p, charset)
			return nil
		})
		if err == nil && count > 0 {
			d.supplies.walked = true
		}
	} else {
		d.agent.Walk(ctx, d.agentTo, d.community, snmp.PrtMarkerSuppliesLevel, statusTimeout, func(p *asn1ber.Packet) error {
			d.supplies.applyLevel(p)
			return nil
		})
	}

	colors := make(map[int]string)
	d.agent.Walk(ctx, d.agentTo, d.community, snmp.PrtMarkerColorantValue, statusTimeout, func(p *asn1ber.Packet) error {
		if len(p.Name) > 0 && p.Value.Kind == asn1ber.KindOctetString {
			colors[p.Name[len(p.Name)-1]] = colorantColor(string(p.Value.Bytes))
		}
		return nil
	})

	out := make([]SupplyRecord, 0, genericutils.Min(max, len(d.supplies.rows)))
	for _, row := range d.supplies.sorted() {
		if len(out) >= max || len(out) >= MaxSupplies {
			break
		}
		record := row.SupplyRecord
		record.Level = supplyPercent(row.rawLevel, row.maxCapacity)
		if color, ok := colors[row.Colorant]; ok {
			record.Color = color
		}
		out = append(out, record)
	}
	return out
}

// charsetFor fetches the device's declared character set once and caches it
// for the life of the handle.
func (d *Device) charsetFor(ctx context.Context) textenc.Charset {
	if d.charsetKnown {
		return d.charset
	}
	d.charset = textenc.Unknown
	d.charsetKnown = true
	packet, err := d.agent.Get(ctx, d.agentTo, d.community, snmp.PrtGeneralCurrentLocalization, statusTimeout)
	if err != nil || packet.Value.Kind != asn1ber.KindInteger {
		return d.charset
	}
	oid := snmp.PrtLocalizationCharacterSet.Child(int(packet.Value.Int))
	packet, err = d.agent.Get(ctx, d.agentTo, d.community, oid, statusTimeout)
	if err != nil || packet.Value.Kind != asn1ber.KindInteger {
		return d.charset
	}
	d.charset = textenc.Charset(packet.Value.Int)
	return d.charset
}

// apply folds one full-table walk result into the row its object name
// addresses: <entry>.<column>.<device>.<supply>.
func (t *supplyTable) apply(p *asn1ber.Packet, charset textenc.Charset) {
	suffix := columnSuffix(p.Name, snmp.PrtMarkerSuppliesEntry)
	if len(suffix) < 3 {
		return
	}
	column, index := suffix[0], suffix[len(suffix)-1]
	row := t.row(index)
	switch column {
	case snmp.SuppliesColumnColorant:
		row.Colorant = int(p.Value.Int)
	case snmp.SuppliesColumnClass:
		row.Class = SupplyClass(p.Value.Int)
	case snmp.SuppliesColumnType:
		row.Type = SupplyType(p.Value.Int)
	case snmp.SuppliesColumnDescription:
		if p.Value.Kind == asn1ber.KindOctetString {
			row.Description = textenc.Decode(p.Value.Bytes, charset)
		}
	case snmp.SuppliesColumnMaxCapacity:
		row.maxCapacity = int(p.Value.Int)
	case snmp.SuppliesColumnLevel:
		row.rawLevel = int(p.Value.Int)
	}
}

// applyLevel folds one level-column walk result into its row.
func (t *supplyTable) applyLevel(p *asn1ber.Packet) {
	if len(p.Name) == 0 {
		return
	}
	index := p.Name[len(p.Name)-1]
	if row, ok := t.rows[index]; ok {
		row.rawLevel = int(p.Value.Int)
	}
}

func (t *supplyTable) row(index int) *supplyState {
	if row, ok := t.rows[index]; ok {
		return row
	}
	row := &supplyState{rawLevel: -1, maxCapacity: -1}
	row.Index = index
	t.rows[index] = row
	return row
}

func (t *supplyTable) sorted() []*supplyState {
	out := make([]*supplyState, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func columnSuffix(name, entry asn1ber.OID) []int {
	if !name.HasPrefix(entry) {
		return nil
	}
	return name[len(entry):]
}

// colorantColor maps a colorant name from prtMarkerColorantValue to an sRGB
// color, or "" when the name resolves to nothing.
func colorantColor(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "black":
		return "#000000"
	case "cyan":
		return "#00FFFF"
	case "magenta":
		return "#FF00FF"
	case "yellow":
		return "#FFFF00"
	case "red":
		return "#FF0000"
	case "green":
		return "#00FF00"
	case "blue":
		return "#0000FF"
	case "white":
		return "#FFFFFF"
	case "gray", "grey", "light-gray", "lightgray":
		return "#808080"
	}
	return ""
}
