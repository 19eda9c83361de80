package domain

import "testing"

func TestQueryDescriptor_Wants(t *testing.T) {
	tests := []struct {
		name   string
		qtype  RRType
		wantV4 bool
		wantV6 bool
	}{
		{"A", RRTypeA, true, false},
		{"AAAA", RRTypeAAAA, false, true},
		{"ANY", RRTypeANY, true, true},
		{"NS", RRTypeNS, false, false},
		{"SOA", RRTypeSOA, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QueryDescriptor{QType: tt.qtype}
			if got := q.WantsV4(); got != tt.wantV4 {
				t.Errorf("WantsV4() = %v, want %v", got, tt.wantV4)
			}
			if got := q.WantsV6(); got != tt.wantV6 {
				t.Errorf("WantsV6() = %v, want %v", got, tt.wantV6)
			}
		})
	}
}

func TestQueryDescriptor_ClassMatches(t *testing.T) {
	tests := []struct {
		name  string
		class RRClass
		want  bool
	}{
		{"IN", RRClassIN, true},
		{"ANY", RRClassANY, true},
		{"unknown", RRClass(3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QueryDescriptor{QClass: tt.class}
			if got := q.ClassMatches(); got != tt.want {
				t.Errorf("ClassMatches() = %v, want %v", got, tt.want)
			}
		})
	}
}
