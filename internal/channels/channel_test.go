package channels

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"multibyte", "héllo wörld", 7, "héllo w..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestBaseChannel_Running(t *testing.T) {
	c := NewBaseChannel("discord", nil, nil)
	if c.Name() != "discord" {
		t.Errorf("Name() = %q", c.Name())
	}
	if c.IsRunning() {
		t.Error("new channel should not be running")
	}
	c.SetRunning(true)
	if !c.IsRunning() {
		t.Error("channel should be running after SetRunning(true)")
	}
}
