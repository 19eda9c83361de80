package domain

import "testing"

func TestZoneConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		zone    ZoneConfig
		wantErr bool
	}{
		{"valid", ZoneConfig{Host: "x.example", NS: "ns.x.example"}, false},
		{"empty host", ZoneConfig{NS: "ns.x.example"}, true},
		{"empty ns", ZoneConfig{Host: "x.example"}, true},
		{"leading dot", ZoneConfig{Host: ".x.example", NS: "ns.x.example"}, true},
		{"trailing dot", ZoneConfig{Host: "x.example.", NS: "ns.x.example"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.zone.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestZoneConfig_HasMbox(t *testing.T) {
	z := ZoneConfig{Mbox: "root.x.example"}
	if !z.HasMbox() {
		t.Error("expected HasMbox true")
	}
	z2 := ZoneConfig{}
	if z2.HasMbox() {
		t.Error("expected HasMbox false")
	}
}

func TestZoneConfig_Matches(t *testing.T) {
	z := ZoneConfig{Host: "x.example"}
	tests := []struct {
		name string
		want bool
	}{
		{"x.example", true},
		{"X.EXAMPLE", true},
		{"www.x.example", true},
		{"WWW.X.EXAMPLE", true},
		{"y.example", false},
		{"zx.example", false},
		{"x.example.evil.com", false},
		{".x.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := z.Matches(tt.name); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
