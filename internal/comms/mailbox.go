package comms

import (
	"context"
	"time"
)

// Mailbox is a single-slot, overwrite-on-put buffer. The MQTT callback
// goroutine fills it; the lifecycle goroutine drains it. A newer response
// replaces an unread older one.
type Mailbox struct {
	ch chan []byte
}

func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan []byte, 1)}
}

// Put stores payload, discarding any unread value. Safe for one producer.
func (m *Mailbox) Put(payload []byte) {
	for {
		select {
		case m.ch <- payload:
			return
		default:
			select {
			case <-m.ch:
			default:
			}
		}
	}
}

// Clear drops any unread value.
func (m *Mailbox) Clear() {
	select {
	case <-m.ch:
	default:
	}
}

// Wait returns the next payload, or ok=false once timeout fires. A payload
// that is already present wins over an expired timer. The context error is
// returned on cancellation.
func (m *Mailbox) Wait(ctx context.Context, timeout <-chan time.Time) (payload []byte, ok bool, err error) {
	select {
	case p := <-m.ch:
		return p, true, nil
	default:
	}
	select {
	case p := <-m.ch:
		return p, true, nil
	case <-timeout:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
