package mqtt

import "github.com/rs/zerolog"

// pending is a serialized message waiting for the broker.
type pending struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue keeps messages published while the broker is unreachable.
// A retained message replaces a queued retained message on the same topic in
// place, so the state document occupies at most one slot. When the queue is
// full the oldest message is overwritten.
// Not safe for concurrent use.
type offlineQueue struct {
	slots   []pending
	head    int // oldest message
	count   int
	warned  bool
	dropped int
	log     zerolog.Logger
}

func newOfflineQueue(capacity int, log zerolog.Logger) *offlineQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &offlineQueue{slots: make([]pending, capacity), log: log}
}

func (q *offlineQueue) at(i int) int {
	return (q.head + i) % len(q.slots)
}

func (q *offlineQueue) push(m pending) {
	if m.retained {
		for i := 0; i < q.count; i++ {
			if s := &q.slots[q.at(i)]; s.retained && s.topic == m.topic {
				*s = m
				return
			}
		}
	}

	if q.count < len(q.slots) {
		q.slots[q.at(q.count)] = m
		q.count++
		return
	}

	if !q.warned {
		q.log.Warn().Int("capacity", len(q.slots)).Str("topic", m.topic).Msg("offline queue full, dropping oldest")
		q.warned = true
	}
	q.dropped++
	q.slots[q.head] = m
	q.head = q.at(1)
}

// drain returns the queued messages oldest first and empties the queue.
func (q *offlineQueue) drain() []pending {
	if q.count == 0 {
		return nil
	}
	out := make([]pending, q.count)
	for i := range out {
		out[i] = q.slots[q.at(i)]
	}
	q.head, q.count, q.warned = 0, 0, false
	return out
}

func (q *offlineQueue) len() int {
	return q.count
}
