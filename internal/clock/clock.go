package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time.Now so services that stamp award and review dates can
// be tested against a fixed instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return &SystemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
