// Package ieee1284 handles IEEE-1284 device-ID strings, the semicolon
// delimited "KEY:value;" records printers use to identify their manufacturer,
// model and command sets.
package ieee1284

import "strings"

// DeviceID is a parsed device-ID string. Keys other than the three named
// fields are preserved in Extra.
type DeviceID struct {
	Manufacturer string
	Model        string
	CommandSet   string
	Extra        map[string]string
}

// Parse splits a device-ID string into its fields. The long key spellings
// (MANUFACTURER, MODEL, COMMAND SET) fold into their short aliases. Parsing
// is permissive: malformed pairs are skipped.
func Parse(s string) DeviceID {
	var id DeviceID
	for _, pair := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch strings.ToUpper(key) {
		case "MFG", "MANUFACTURER":
			id.Manufacturer = value
		case "MDL", "MODEL":
			id.Model = value
		case "CMD", "COMMAND SET":
			id.CommandSet = value
		default:
			if key == "" {
				continue
			}
			if id.Extra == nil {
				id.Extra = make(map[string]string)
			}
			id.Extra[key] = value
		}
	}
	return id
}

// String renders the canonical "MFG:..;MDL:..;CMD:..;" form. Empty fields
// are omitted.
func (id DeviceID) String() string {
	var sb strings.Builder
	if id.Manufacturer != "" {
		sb.WriteString("MFG:")
		sb.WriteString(id.Manufacturer)
		sb.WriteByte(';')
	}
	if id.Model != "" {
		sb.WriteString("MDL:")
		sb.WriteString(id.Model)
		sb.WriteByte(';')
	}
	if id.CommandSet != "" {
		sb.WriteString("CMD:")
		sb.WriteString(id.CommandSet)
		sb.WriteByte(';')
	}
	for key, value := range id.Extra {
		sb.WriteString(key)
		sb.WriteByte(':')
		sb.WriteString(value)
		sb.WriteByte(';')
	}
	return sb.String()
}

// Normalize repairs device-ID strings as seen in the wild: some agents embed
// a newline where a semicolon belongs.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", ";")
	s = strings.ReplaceAll(s, "\n", ";")
	return strings.ReplaceAll(s, "\r", ";")
}

// Description builds a human-readable make-and-model string. HP devices get
// the usual "HP model" rendering with any spelled-out manufacturer prefix
// stripped from the model.
func Description(manufacturer, model string) string {
	switch {
	case manufacturer == "" && model == "":
		return ""
	case manufacturer == "":
		return model
	case model == "":
		return manufacturer
	}
	if strings.EqualFold(manufacturer, "HP") || strings.EqualFold(manufacturer, "Hewlett-Packard") {
		model = strings.TrimSpace(strings.TrimPrefix(model, "Hewlett-Packard"))
		model = strings.TrimSpace(strings.TrimPrefix(model, "HP"))
		return "HP " + model
	}
	if strings.HasPrefix(strings.ToLower(model), strings.ToLower(manufacturer)) {
		return model
	}
	return manufacturer + " " + model
}
