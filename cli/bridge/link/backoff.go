package link

import "time"

// backoff produces reconnect delays doubling from min up to max.
type backoff struct {
	min  time.Duration
	max  time.Duration
	next time.Duration
}

func newBackoff(min, max time.Duration) *backoff {
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	return &backoff{min: min, max: max, next: min}
}

func (b *backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}

func (b *backoff) Reset() {
	b.next = b.min
}
