package service

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const defaultOrderNumberPrefix = "CT"

// NewOrderNumberGenerator returns prefix + ULID numbers. ULIDs sort by creation
// time and stay strictly increasing within one process.
func NewOrderNumberGenerator(prefix string) func(time.Time) string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)

	return func(now time.Time) string {
		mu.Lock()
		defer mu.Unlock()

		return prefix + ulid.MustNew(ulid.Timestamp(now), entropy).String()
	}
}
