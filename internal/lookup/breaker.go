package lookup

// stageBreaker bounds worst-case cascade latency for one (provider, request)
// pair: after threshold consecutive empty stages the remaining stages are
// skipped. Owned exclusively by its provider's goroutine for the duration of
// one request, so it needs no locking, and it never outlives the request.
type stageBreaker struct {
	threshold int
	streak    int
	tripped   bool
}

func newStageBreaker(threshold int) *stageBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &stageBreaker{threshold: threshold}
}

// allow reports whether the next stage may run.
func (b *stageBreaker) allow() bool {
	return !b.tripped
}

// recordEmpty counts a stage that yielded nothing; reaching the threshold
// trips the breaker.
func (b *stageBreaker) recordEmpty() {
	b.streak++
	if b.streak >= b.threshold {
		b.tripped = true
	}
}

// recordHit resets the streak: any non-empty stage closes the breaker.
func (b *stageBreaker) recordHit() {
	b.streak = 0
	b.tripped = false
}
