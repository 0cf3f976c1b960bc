package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock reads so expiry and window logic can be tested.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func NewSystem() Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)
