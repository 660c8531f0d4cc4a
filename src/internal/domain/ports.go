package domain

import (
	"time"

	"github.com/google/uuid"
)

// Clock and IDGenerator keep time and identifier generation substitutable
// in tests.
type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
