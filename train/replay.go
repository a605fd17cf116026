package train

import (
	"math/rand"
	"sync"

	"duel/atomic_counter"
)

// Sample is one supervised training example: the encoded board from the
// mover's perspective, the search-derived visit-count policy over the full
// action space, and the eventual game outcome from that same perspective.
type Sample struct {
	Features []float64
	Policy   []float64
	Value    float64
}

// ReplayBuffer is a bounded FIFO of self-play samples. Add evicts the
// oldest entries once capacity is exceeded, exactly as the reference
// trainer's deque(maxlen=replay_size) does. Size is mirrored into an
// atomic_counter.Counter so a dashboard goroutine can read live occupancy
// without taking the buffer's lock.
type ReplayBuffer struct {
	mu       sync.Mutex
	capacity int
	samples  []Sample
	size     *atomic_counter.Counter
}

// NewReplayBuffer returns an empty buffer bounded at capacity.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	return &ReplayBuffer{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
		size:     atomic_counter.NewCounter(0),
	}
}

// Add appends one episode's samples, evicting from the front as needed.
func (rb *ReplayBuffer) Add(episode []Sample) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.samples = append(rb.samples, episode...)
	if overflow := len(rb.samples) - rb.capacity; overflow > 0 {
		rb.samples = rb.samples[overflow:]
	}
	rb.size.AtomicSet(int64(len(rb.samples)))
}

// Len returns the current occupancy.
func (rb *ReplayBuffer) Len() int {
	return int(rb.size.AtomicRead())
}

// Sample draws n samples uniformly at random without replacement (or the
// whole buffer if n exceeds its size), for one training batch.
func (rb *ReplayBuffer) Sample(n int, rng *rand.Rand) []Sample {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if n > len(rb.samples) {
		n = len(rb.samples)
	}
	perm := rng.Perm(len(rb.samples))[:n]
	out := make([]Sample, n)
	for i, idx := range perm {
		out[i] = rb.samples[idx]
	}
	return out
}

// Batches shuffles a copy of the whole buffer and splits it into batches of
// batchSize (the last one may be shorter), matching the reference trainer's
// shuffle-then-chunk epoch setup.
func (rb *ReplayBuffer) Batches(batchSize int, rng *rand.Rand) [][]Sample {
	rb.mu.Lock()
	all := make([]Sample, len(rb.samples))
	copy(all, rb.samples)
	rb.mu.Unlock()

	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	var batches [][]Sample
	for start := 0; start < len(all); start += batchSize {
		end := start + batchSize
		if end > len(all) {
			end = len(all)
		}
		batches = append(batches, all[start:end])
	}
	return batches
}
