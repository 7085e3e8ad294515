package breaker

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

// Breaker trips open once the failure share over the tracked tail of calls
// reaches the threshold, and recovers through a half-open probe phase.
type Breaker struct {
	mu sync.Mutex

	state           state
	lastAttemptedAt time.Time

	// tail ring buffer of call outcomes (true = failed)
	tail []bool
	pos  int

	cooldown  time.Duration
	threshold float64
	// consecutive successes required in half-open before closing
	recovery     int
	successCount int
}

func New(tailLen int, cooldown time.Duration, threshold float64, recovery int) *Breaker {
	return &Breaker{
		state:     closed,
		tail:      make([]bool, tailLen),
		cooldown:  cooldown,
		threshold: threshold,
		recovery:  recovery,
	}
}

func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == open {
		if time.Since(b.lastAttemptedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = halfOpen
		b.successCount = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tail[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.tail)

	if b.state == halfOpen {
		if err != nil {
			b.trip()
		} else {
			b.successCount++
			if b.successCount > b.recovery {
				b.reset()
			}
		}
		return err
	}

	fails := 0
	for _, failed := range b.tail {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.tail)) >= b.threshold {
		b.trip()
	}
	return err
}

func (b *Breaker) trip() {
	b.state = open
	b.successCount = 0
	b.lastAttemptedAt = time.Now()
}

func (b *Breaker) reset() {
	for i := range b.tail {
		b.tail[i] = false
	}
	b.pos = 0
	b.successCount = 0
	b.state = closed
}
