package policy

import "testing"

func TestPortWindow_Boundaries(t *testing.T) {
	w, err := NewPortWindow(15000, 15999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		port uint16
		want bool
	}{
		{port: 15000, want: false}, // lower bound is exclusive
		{port: 15001, want: true},
		{port: 15500, want: true},
		{port: 15999, want: true}, // upper bound is inclusive
		{port: 16000, want: false},
		{port: 80, want: false},
		{port: 65535, want: false},
	}

	for _, tt := range tests {
		if got := w.Contains(tt.port, true); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.port, got, tt.want)
		}
	}
}

func TestPortWindow_NoPort(t *testing.T) {
	w, _ := NewPortWindow(15000, 15999)
	if w.Contains(15500, false) {
		t.Error("expected port-less packet to be outside the window")
	}
}

func TestNewPortWindow_Invalid(t *testing.T) {
	if _, err := NewPortWindow(15999, 15000); err == nil {
		t.Error("expected error for min above max")
	}
	if _, err := NewPortWindow(15000, 15000); err == nil {
		t.Error("expected error for min equal to max")
	}
}

func TestPortWindow_String(t *testing.T) {
	w, _ := NewPortWindow(15000, 15999)
	if got := w.String(); got != "(15000, 15999]" {
		t.Errorf("unexpected string form: %s", got)
	}
}
