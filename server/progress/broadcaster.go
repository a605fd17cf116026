// Package progress serves a live training-progress dashboard: one page,
// one websocket pushing history records as iterations complete. It keeps
// the teacher's single-page, single-broadcast-channel texture — ping/pong
// keepalive, read-pump-drives-control-frames, drop-if-too-fast publish
// throttling — adapted from racetrack cell values to AlphaZero training
// metrics.
package progress

import "sync"

// Update is one broadcastable snapshot of training progress: the
// checkpoint metadata's history record fields except self_play_winners,
// plus the total iteration count and a point-in-time status line for the
// dashboard banner.
type Update struct {
	Iteration       int     `json:"iteration"`
	TotalIterations int     `json:"total_iterations"`
	ReplaySize      int     `json:"replay_size"`
	PolicyLoss      float64 `json:"policy_loss"`
	ValueLoss       float64 `json:"value_loss"`
	GatingWinRate   float64 `json:"gating_win_rate"`
	Promoted        bool    `json:"promoted"`
	Status          string  `json:"status"`
}

// Broadcaster fans one Update stream out to any number of subscribed
// websocket publish loops, each with its own buffered channel so a slow
// client never blocks the trainer.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan Update]struct{}
	last        Update
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[chan Update]struct{})}
}

// Publish fans update out to every current subscriber and remembers it as
// the last-known state for newly connecting clients.
func (b *Broadcaster) Publish(update Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = update
	for sub := range b.subscribers {
		select {
		case sub <- update:
		default:
			// Drop rather than block a slow subscriber; it will catch the
			// next update.
		}
	}
}

// Subscribe registers a new buffered channel and returns it along with the
// most recent update, if any, so a fresh client doesn't start blank.
func (b *Broadcaster) Subscribe() (chan Update, Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Update, 4)
	b.subscribers[ch] = struct{}{}
	return ch, b.last
}

// Unsubscribe removes and closes ch.
func (b *Broadcaster) Unsubscribe(ch chan Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}
