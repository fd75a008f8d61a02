// Package screen is the four-screen flow of the app: splash, input, result
// and upgrade. It owns the active result and the session history.
package screen

import (
	"errors"
	"fmt"
	"sync"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/logx"
)

// State is the visible screen.
type State int

const (
	Splash State = iota
	Input
	Result
	Upgrade
)

func (s State) String() string {
	switch s {
	case Splash:
		return "splash"
	case Input:
		return "input"
	case Result:
		return "result"
	case Upgrade:
		return "upgrade"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Direction tells the presentation layer which way to animate.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Transition describes one state change.
type Transition struct {
	From      State
	To        State
	Direction Direction
}

// ErrInvalidTransition is returned for triggers that do not apply to the
// current state.
var ErrInvalidTransition = errors.New("invalid screen transition")

// Controller is the screen state machine.
type Controller struct {
	mu        sync.Mutex
	state     State
	direction Direction
	current   *concept.Result
	history   concept.History
	listeners []func(Transition)
}

// NewController starts on the splash screen.
func NewController() *Controller {
	return &Controller{state: Splash, direction: Forward}
}

// State returns the visible screen and the last direction.
func (c *Controller) State() (State, Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.direction
}

// Current returns the active result, if any.
func (c *Controller) Current() *concept.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// History returns archived results, most recent first.
func (c *Controller) History() []*concept.Result {
	return c.history.All()
}

// OnChange registers a listener called after every transition.
func (c *Controller) OnChange(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Proceed leaves the splash screen.
func (c *Controller) Proceed() error {
	return c.move(func() (State, Direction, error) {
		if c.state != Splash {
			return 0, 0, ErrInvalidTransition
		}
		return Input, Forward, nil
	})
}

// GenerateSucceeded shows r on the result screen.
func (c *Controller) GenerateSucceeded(r *concept.Result) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", ErrInvalidTransition)
	}
	return c.move(func() (State, Direction, error) {
		if c.state != Input {
			return 0, 0, ErrInvalidTransition
		}
		c.current = r
		return Result, Forward, nil
	})
}

// QuotaExhausted routes from input to the upgrade screen.
func (c *Controller) QuotaExhausted() error {
	return c.move(func() (State, Direction, error) {
		if c.state != Input {
			return 0, 0, ErrInvalidTransition
		}
		return Upgrade, Forward, nil
	})
}

// Reset archives the active result and returns to input, or to upgrade
// when no generations remain.
func (c *Controller) Reset(quotaRemaining int) error {
	return c.move(func() (State, Direction, error) {
		if c.state != Result {
			return 0, 0, ErrInvalidTransition
		}
		if c.current != nil {
			c.history.Add(c.current)
			c.current = nil
		}
		if quotaRemaining <= 0 {
			return Upgrade, Forward, nil
		}
		return Input, Backward, nil
	})
}

// UpgradeCTA leaves the upgrade screen.
func (c *Controller) UpgradeCTA() error {
	return c.move(func() (State, Direction, error) {
		if c.state != Upgrade {
			return 0, 0, ErrInvalidTransition
		}
		return Input, Backward, nil
	})
}

// move applies step under the lock and notifies listeners outside it.
func (c *Controller) move(step func() (State, Direction, error)) error {
	c.mu.Lock()
	from := c.state
	to, dir, err := step()
	if err != nil {
		c.mu.Unlock()
		logx.Debug().Str("state", from.String()).Msg("rejected screen transition")
		return err
	}
	c.state = to
	c.direction = dir
	listeners := append(([]func(Transition))(nil), c.listeners...)
	c.mu.Unlock()

	t := Transition{From: from, To: to, Direction: dir}
	logx.Debug().Str("from", from.String()).Str("to", to.String()).Str("direction", dir.String()).Msg("screen transition")
	for _, fn := range listeners {
		fn(t)
	}
	return nil
}
