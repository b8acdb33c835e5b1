package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator yields fixed-width identifiers with negligible collision
// probability at expected catalog sizes.
type IDGenerator interface {
	NewID() (string, error)
}

// Clock yields monotonically non-decreasing timestamps in unix nanoseconds.
type Clock interface {
	Now() uint64
}

var (
	_ IDGenerator = (*UUIDGenerator)(nil)
	_ Clock       = (*SystemClock)(nil)
)

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}
	return id.String(), nil
}

// SystemClock reads the wall clock and clamps it so successive calls never
// go backwards, even across clock adjustments.
type SystemClock struct {
	mu   sync.Mutex
	last uint64
}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() uint64 {
	//nolint:gosec
	now := uint64(time.Now().UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()
	if now < c.last {
		now = c.last
	}
	c.last = now
	return now
}
