package gnss

import "testing"

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in      string
		want    Signal
		wantErr bool
	}{
		{"E1B", SignalE1B, false},
		{"E1C", SignalE1C, false},
		{"E1BC", SignalE1BC, false},
		{"1B", "", true},
		{"e1b", "", true},
		{"", "", true},
		{"L1CA", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignal(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSignal(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseSignal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSystem(t *testing.T) {
	valid := map[string]string{
		"G": "GPS",
		"R": "GLONASS",
		"S": "SBAS",
		"E": "Galileo",
		"C": "Compass",
	}
	for in, name := range valid {
		sys, err := ParseSystem(in)
		if err != nil {
			t.Fatalf("ParseSystem(%q): %v", in, err)
		}
		if sys.Name() != name {
			t.Fatalf("System(%q).Name() = %q, want %q", in, sys.Name(), name)
		}
	}
	for _, in := range []string{"", "X", "GE", "g"} {
		if _, err := ParseSystem(in); err == nil {
			t.Fatalf("ParseSystem(%q) accepted", in)
		}
	}
}

func TestPRNPeriod(t *testing.T) {
	if got := E1PRNPeriodSecs; got < 0.00399 || got > 0.00401 {
		t.Fatalf("PRN period = %g s, want ~4 ms", got)
	}
}
