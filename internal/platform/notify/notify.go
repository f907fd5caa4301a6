package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier is the haptic/toast collaborator. Calls are fire-and-forget and
// purely advisory.
type Notifier interface {
	Vibrate()
	Toast(message string)
}

type Noop struct{}

func (Noop) Vibrate()      {}
func (Noop) Toast(string) {}

// Terminal rings the bell for a vibration and prints toasts on their own line.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Vibrate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, "\a")
}

func (t *Terminal) Toast(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, message)
}

type EventKind int

const (
	EventVibrate EventKind = iota
	EventToast
)

type Event struct {
	Kind    EventKind
	Message string
}

// Queue buffers notifications for a consumer that polls, such as the TUI.
// When the buffer is full new events are dropped.
type Queue struct {
	events chan Event
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{events: make(chan Event, size)}
}

func (q *Queue) Vibrate() { q.push(Event{Kind: EventVibrate}) }

func (q *Queue) Toast(message string) { q.push(Event{Kind: EventToast, Message: message}) }

func (q *Queue) push(e Event) {
	select {
	case q.events <- e:
	default:
	}
}

// Drain returns every buffered event without blocking.
func (q *Queue) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-q.events:
			out = append(out, e)
		default:
			return out
		}
	}
}
