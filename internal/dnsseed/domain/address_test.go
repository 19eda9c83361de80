package domain

import (
	"net"
	"testing"
)

func TestAddress_V4(t *testing.T) {
	a := NewAddressV4([4]byte{1, 2, 3, 4})
	if !a.IsV4() || a.IsV6() {
		t.Fatalf("expected v4 address")
	}
	if a.String() != "1.2.3.4" {
		t.Errorf("expected 1.2.3.4, got %s", a.String())
	}
}

func TestAddress_V6(t *testing.T) {
	var b [16]byte
	b[15] = 1
	a := NewAddressV6(b)
	if !a.IsV6() || a.IsV4() {
		t.Fatalf("expected v6 address")
	}
	if a.String() != "::1" {
		t.Errorf("expected ::1, got %s", a.String())
	}
}

func TestAddressFromNetIP(t *testing.T) {
	tests := []struct {
		name   string
		ip     net.IP
		wantV4 bool
	}{
		{"v4", net.ParseIP("192.0.2.1"), true},
		{"v6", net.ParseIP("2001:db8::1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := AddressFromNetIP(tt.ip)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.IsV4() != tt.wantV4 {
				t.Errorf("IsV4() = %v, want %v", a.IsV4(), tt.wantV4)
			}
		})
	}
}

func TestAddressFromNetIP_Invalid(t *testing.T) {
	_, err := AddressFromNetIP(nil)
	if err == nil {
		t.Fatal("expected error for nil IP")
	}
}
