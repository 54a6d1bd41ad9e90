package ieee1284

import "strings"

// pdlCommandSets maps the MIME types a printer advertises in its DNS-SD
// "pdl" key to PDL command-set keywords. Types without a known keyword are
// skipped; the advertised order is preserved.
var pdlCommandSets = map[string]string{
	"application/postscript":   "PS",
	"application/vnd.hp-pcl":   "PCL",
	"application/vnd.hp-pclxl": "PCLXL",
	"image/pwg-raster":         "PWGRaster",
	"image/urf":                "URF",
	"image/jpeg":               "JPEG",
}

// vendorCommandSets lists command sets a vendor's devices always accept even
// when not advertised.
var vendorCommandSets = map[string]string{
	"EPSON": "ESCPL2",
}

// ParseTXT splits DNS-SD TXT record strings ("key=value", no escaping) into
// a map with lowercased keys. A string without '=' becomes a key with an
// empty value.
func ParseTXT(records []string) map[string]string {
	txt := make(map[string]string, len(records))
	for _, record := range records {
		key, value, _ := strings.Cut(record, "=")
		if key == "" {
			continue
		}
		txt[strings.ToLower(key)] = value
	}
	return txt
}

// FromTXT synthesizes a device ID from DNS-SD TXT metadata. Advertisements
// are frequently incomplete, so missing fields fall back to each other:
// usb_CMD falls back to a command set derived from the pdl list, and
// make/model derive from ty/product when the usb_* keys are absent.
func FromTXT(txt map[string]string) DeviceID {
	var id DeviceID
	id.Manufacturer = txt["usb_mfg"]
	id.Model = txt["usb_mdl"]
	id.CommandSet = txt["usb_cmd"]

	ty := strings.TrimSpace(txt["ty"])
	product := strings.Trim(strings.TrimSpace(txt["product"]), "()")

	if id.Manufacturer == "" && id.Model == "" && ty != "" {
		if maker, model, ok := strings.Cut(ty, " "); ok {
			id.Manufacturer = maker
			id.Model = model
		} else {
			id.Model = ty
		}
	}
	if id.Model == "" {
		if product != "" {
			id.Model = product
		} else if ty != "" {
			id.Model = ty
		}
	}
	if id.Manufacturer == "" {
		if source := firstNonEmpty(ty, product, id.Model); source != "" {
			id.Manufacturer, _, _ = strings.Cut(source, " ")
		}
	}

	if id.CommandSet == "" {
		id.CommandSet = commandSetFromPDL(txt["pdl"], id.Manufacturer)
	}
	return id
}

// commandSetFromPDL maps a comma-separated MIME type list to a command-set
// list, appending the vendor's implicit command set when known.
func commandSetFromPDL(pdl, manufacturer string) string {
	var sets []string
	for _, mime := range strings.Split(pdl, ",") {
		mime = strings.ToLower(strings.TrimSpace(mime))
		if cmd, ok := pdlCommandSets[mime]; ok {
			sets = append(sets, cmd)
		}
	}
	if extra, ok := vendorCommandSets[strings.ToUpper(manufacturer)]; ok {
		sets = append(sets, extra)
	}
	return strings.Join(sets, ",")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
