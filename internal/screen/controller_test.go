package screen

import (
	"errors"
	"testing"

	"codeberg.org/snonux/wurdle/internal/concept"
)

func result(word string) *concept.Result {
	return concept.NewResult("one two three", concept.WordData{Word: word}, "data:image/png;base64,AA==")
}

func TestTransitions(t *testing.T) {
	c := NewController()
	var seen []Transition
	c.OnChange(func(tr Transition) { seen = append(seen, tr) })

	steps := []struct {
		name string
		do   func() error
		to   State
		dir  Direction
	}{
		{"proceed", c.Proceed, Input, Forward},
		{"generate", func() error { return c.GenerateSucceeded(result("gloop")) }, Result, Forward},
		{"reset with quota", func() error { return c.Reset(3) }, Input, Backward},
		{"exhausted", c.QuotaExhausted, Upgrade, Forward},
		{"upgrade", c.UpgradeCTA, Input, Backward},
		{"generate again", func() error { return c.GenerateSucceeded(result("blorp")) }, Result, Forward},
		{"reset exhausted", func() error { return c.Reset(0) }, Upgrade, Forward},
	}
	for i, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: error = %v", s.name, err)
		}
		state, dir := c.State()
		if state != s.to || dir != s.dir {
			t.Errorf("%s: state = %v/%v, want %v/%v", s.name, state, dir, s.to, s.dir)
		}
		if seen[i].To != s.to || seen[i].Direction != s.dir {
			t.Errorf("%s: listener saw %+v", s.name, seen[i])
		}
	}

	h := c.History()
	if len(h) != 2 || h[0].Word != "blorp" || h[1].Word != "gloop" {
		t.Errorf("history = %v, want most recent first", h)
	}
	if c.Current() != nil {
		t.Error("reset should clear the active result")
	}
}

func TestInvalidTransitions(t *testing.T) {
	c := NewController()
	invalid := []func() error{
		func() error { return c.GenerateSucceeded(result("x")) },
		c.QuotaExhausted,
		func() error { return c.Reset(5) },
		c.UpgradeCTA,
	}
	calls := 0
	c.OnChange(func(Transition) { calls++ })
	for i, fn := range invalid {
		if err := fn(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("trigger %d from splash: error = %v", i, err)
		}
	}
	if s, _ := c.State(); s != Splash {
		t.Errorf("state = %v, want splash", s)
	}
	if calls != 0 {
		t.Error("listeners called for rejected triggers")
	}

	c.Proceed()
	if err := c.Proceed(); !errors.Is(err, ErrInvalidTransition) {
		t.Error("Proceed from input should be rejected")
	}
	if err := c.GenerateSucceeded(nil); !errors.Is(err, ErrInvalidTransition) {
		t.Error("nil result should be rejected")
	}
}
