package routing

import (
	"fmt"
	"sync"
	"testing"
)

func TestState_InitiallyUnset(t *testing.T) {
	s := New()
	if id, ok := s.Active(); ok || id != "" {
		t.Errorf("Active() = (%q, %v), want unset", id, ok)
	}
	if s.IsActive("") {
		t.Error("IsActive(\"\") should be false")
	}
	if s.IsActive("123") {
		t.Error("IsActive on unset state should be false")
	}
}

func TestState_SetResetSequences(t *testing.T) {
	type op struct {
		set   string
		reset bool
	}
	tests := []struct {
		name   string
		ops    []op
		active string // expected active ID after ops, "" = unset
	}{
		{"single set", []op{{set: "a"}}, "a"},
		{"overwrite", []op{{set: "a"}, {set: "b"}}, "b"},
		{"idempotent set", []op{{set: "a"}, {set: "a"}}, "a"},
		{"reset after set", []op{{set: "a"}, {reset: true}}, ""},
		{"double reset", []op{{set: "a"}, {reset: true}, {reset: true}}, ""},
		{"set after reset", []op{{set: "a"}, {reset: true}, {set: "c"}}, "c"},
		{"reset on unset", []op{{reset: true}}, ""},
	}

	probes := []string{"a", "b", "c", "d"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for _, o := range tt.ops {
				if o.reset {
					s.Reset()
				} else {
					s.Set(o.set)
				}
			}
			for _, p := range probes {
				want := p == tt.active
				if got := s.IsActive(p); got != want {
					t.Errorf("IsActive(%q) = %v, want %v", p, got, want)
				}
			}
			id, ok := s.Active()
			if id != tt.active || ok != (tt.active != "") {
				t.Errorf("Active() = (%q, %v), want %q", id, ok, tt.active)
			}
		})
	}
}

func TestState_SetEmptyActsAsReset(t *testing.T) {
	s := New()
	s.Set("a")
	s.Set("")
	if _, ok := s.Active(); ok {
		t.Error("Set(\"\") should leave the state unset")
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Set(fmt.Sprintf("ch-%d", i))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.IsActive("ch-1")
		}()
	}
	wg.Wait()
	if _, ok := s.Active(); !ok {
		t.Error("expected some channel to be active after concurrent sets")
	}
}
