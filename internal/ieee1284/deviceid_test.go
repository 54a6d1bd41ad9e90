package ieee1284

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want DeviceID
	}{
		{
			name: "short keys",
			in:   "MFG:EPSON;MDL:WF-3820;CMD:ESCPL2,PS;",
			want: DeviceID{Manufacturer: "EPSON", Model: "WF-3820", CommandSet: "ESCPL2,PS"},
		},
		{
			name: "long keys",
			in:   "MANUFACTURER:Lexmark;MODEL:MS810;COMMAND SET:PCL,PS;",
			want: DeviceID{Manufacturer: "Lexmark", Model: "MS810", CommandSet: "PCL,PS"},
		},
		{
			name: "whitespace and missing trailing semicolon",
			in:   "MFG: HP ; MDL: LaserJet 4000",
			want: DeviceID{Manufacturer: "HP", Model: "LaserJet 4000"},
		},
		{
			name: "malformed pairs skipped",
			in:   "garbage;MFG:Canon;;:;",
			want: DeviceID{Manufacturer: "Canon"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Parse(test.in)
			if got.Manufacturer != test.want.Manufacturer ||
				got.Model != test.want.Model ||
				got.CommandSet != test.want.CommandSet {
				t.Errorf("got %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	id := DeviceID{Manufacturer: "EPSON", Model: "WF-3820", CommandSet: "ESCPL2"}
	if got := Parse(id.String()); got.Manufacturer != id.Manufacturer ||
		got.Model != id.Model || got.CommandSet != id.CommandSet {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	in := "MFG:Brother\nMDL:HL-2270DW\r\nCMD:PCL;"
	want := "MFG:Brother;MDL:HL-2270DW;CMD:PCL;"
	if got := Normalize(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		manufacturer, model, want string
	}{
		{"HP", "LaserJet 4000", "HP LaserJet 4000"},
		{"Hewlett-Packard", "Hewlett-Packard LaserJet 4000", "HP LaserJet 4000"},
		{"EPSON", "WF-3820", "EPSON WF-3820"},
		{"Lexmark", "Lexmark MS810", "Lexmark MS810"},
		{"", "MS810", "MS810"},
		{"Canon", "", "Canon"},
		{"", "", ""},
	}
	for _, test := range tests {
		if got := Description(test.manufacturer, test.model); got != test.want {
			t.Errorf("Description(%q, %q) = %q, want %q", test.manufacturer, test.model, got, test.want)
		}
	}
}

func TestFromTXT(t *testing.T) {
	tests := []struct {
		name string
		txt  []string
		want DeviceID
	}{
		{
			name: "explicit usb keys win",
			txt:  []string{"usb_MFG=EPSON", "usb_MDL=WF-3820", "usb_CMD=ESCPL2,BDC", "pdl=application/postscript"},
			want: DeviceID{Manufacturer: "EPSON", Model: "WF-3820", CommandSet: "ESCPL2,BDC"},
		},
		{
			name: "pdl synthesis with vendor suffix",
			txt:  []string{"usb_MFG=EPSON", "usb_MDL=WF-3820", "pdl=application/pdf,image/urf"},
			want: DeviceID{Manufacturer: "EPSON", Model: "WF-3820", CommandSet: "URF,ESCPL2"},
		},
		{
			name: "pdl synthesis order preserving",
			txt:  []string{"usb_MFG=HP", "usb_MDL=M404", "pdl=image/urf,application/postscript,application/vnd.hp-PCL"},
			want: DeviceID{Manufacturer: "HP", Model: "M404", CommandSet: "URF,PS,PCL"},
		},
		{
			name: "ty splits into make and model",
			txt:  []string{"ty=Canon PIXMA TR8620", "pdl=image/pwg-raster"},
			want: DeviceID{Manufacturer: "Canon", Model: "PIXMA TR8620", CommandSet: "PWGRaster"},
		},
		{
			name: "product fills missing model",
			txt:  []string{"usb_MFG=Canon", "product=(PIXMA TR8620)"},
			want: DeviceID{Manufacturer: "Canon", Model: "PIXMA TR8620"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := FromTXT(ParseTXT(test.txt))
			if got.Manufacturer != test.want.Manufacturer ||
				got.Model != test.want.Model ||
				got.CommandSet != test.want.CommandSet {
				t.Errorf("got %+v, want %+v", got, test.want)
			}
		})
	}
}
