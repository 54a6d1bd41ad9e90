package snmp

import "github.com/printkit/netdevice/pkg/asn1ber"

// Well-known OIDs used for printer discovery and status. The names mirror the
// MIB objects they address so callers never scatter raw dotted strings.
//
// Reference:
// - MIB-II System: 1.3.6.1.2.1.1.*   (RFC 1213)
// - Host Resources: 1.3.6.1.2.1.25.* (RFC 2790)
// - Printer MIB: 1.3.6.1.2.1.43.*    (RFC 3805)
// - PWG Port Monitor: 1.3.6.1.4.1.2699.* (PWG 5107.1)
var (
	// SysName is the device hostname string (sysName.0).
	SysName = asn1ber.MustParseOID("1.3.6.1.2.1.1.5.0")

	// HrDeviceType identifies the HOST-RESOURCES-MIB device class of the
	// first device (hrDeviceType.1).
	HrDeviceType = asn1ber.MustParseOID("1.3.6.1.2.1.25.3.2.1.2.1")
	// HrDevicePrinter is the hrDeviceType value that marks a printer.
	HrDevicePrinter = asn1ber.MustParseOID("1.3.6.1.2.1.25.3.1.5")
	// HrDeviceDescr is the human-readable device description (hrDeviceDescr.1).
	HrDeviceDescr = asn1ber.MustParseOID("1.3.6.1.2.1.25.3.2.1.3.1")
	// HrPrinterDetectedErrorState is the printer error bitmap
	// (hrPrinterDetectedErrorState.1).
	HrPrinterDetectedErrorState = asn1ber.MustParseOID("1.3.6.1.2.1.25.3.5.1.2.1")

	// PrtGeneralCurrentLocalization selects the localization row whose
	// character set applies to description strings.
	PrtGeneralCurrentLocalization = asn1ber.MustParseOID("1.3.6.1.2.1.43.5.1.1.1.1")
	// PrtLocalizationCharacterSet is the charset column of the localization
	// table; append the row index from PrtGeneralCurrentLocalization.
	PrtLocalizationCharacterSet = asn1ber.MustParseOID("1.3.6.1.2.1.43.7.1.1.4.1")

	// PrtMarkerSuppliesEntry is the prtMarkerSuppliesTable entry; its columns
	// are indexed as <entry>.<column>.<device>.<supply>.
	PrtMarkerSuppliesEntry = asn1ber.MustParseOID("1.3.6.1.2.1.43.11.1.1")
	// PrtMarkerSuppliesLevel is the level column for device 1, the only
	// column that changes between polls.
	PrtMarkerSuppliesLevel = asn1ber.MustParseOID("1.3.6.1.2.1.43.11.1.1.9.1")
	// PrtMarkerColorantValue is the colorant name column for device 1.
	PrtMarkerColorantValue = asn1ber.MustParseOID("1.3.6.1.2.1.43.12.1.1.4.1")
)

// Columns of prtMarkerSuppliesEntry.
const (
	SuppliesColumnColorant    = 3
	SuppliesColumnClass       = 4
	SuppliesColumnType        = 5
	SuppliesColumnDescription = 6
	SuppliesColumnUnit        = 7
	SuppliesColumnMaxCapacity = 8
	SuppliesColumnLevel       = 9
)

// IEEE-1284 device-ID OIDs. The agent's vendor is unknown when discovery
// queries it, so all of these are asked unconditionally.
var (
	// PpmPrinterIEEE1284DeviceID is the standard PWG Port Monitor object
	// (ppmPrinterIEEE1284DeviceId.1.1).
	PpmPrinterIEEE1284DeviceID = asn1ber.MustParseOID("1.3.6.1.4.1.2699.1.2.1.2.1.1.3.1.1")
	// HPDeviceID is HP's private device-ID object.
	HPDeviceID = asn1ber.MustParseOID("1.3.6.1.4.1.11.2.3.9.1.1.7.0")
	// LexmarkDeviceID is Lexmark's private device-ID object.
	LexmarkDeviceID = asn1ber.MustParseOID("1.3.6.1.4.1.641.2.1.2.1.3.1")
	// RicohDeviceID is Ricoh's private device-ID object.
	RicohDeviceID = asn1ber.MustParseOID("1.3.6.1.4.1.367.3.2.1.6.1.2.0")
)

// Raw-socket port OIDs, also asked unconditionally.
var (
	// LexmarkRawPort is Lexmark's private raw-socket port number object.
	LexmarkRawPort = asn1ber.MustParseOID("1.3.6.1.4.1.641.1.5.7.11.0")
	// PWGRawPort is the PWG Port Monitor raw port object
	// (ppmPortServicePort for the appsocket service).
	PWGRawPort = asn1ber.MustParseOID("1.3.6.1.4.1.2699.1.2.1.3.1.1.6.1.1")
)
