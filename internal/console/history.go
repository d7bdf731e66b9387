// Package console keeps the toolkit's message history and runs the
// commands typed into it.
package console

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityInput
)

var severityNames = [...]string{"debug", "info", "warning", "error", "input"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	for i, name := range severityNames {
		if name == string(b) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", b)
}

// SeverityOf maps a logrus level onto a console severity.
func SeverityOf(level log.Level) Severity {
	switch level {
	case log.PanicLevel, log.FatalLevel, log.ErrorLevel:
		return SeverityError
	case log.WarnLevel:
		return SeverityWarning
	case log.InfoLevel:
		return SeverityInfo
	}
	return SeverityDebug
}

// Message is one console line. Count is how many identical messages in a
// row were collapsed into it.
type Message struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"time"`
	Severity Severity  `json:"severity"`
	Text     string    `json:"text"`
	Count    int       `json:"count"`
}

// History is safe for concurrent use: log messages may arrive from any
// goroutine while the frame loop reads.
type History struct {
	mu       sync.Mutex
	messages []Message
	max      int
	collapse bool
	seq      uint64
	subs     map[int]chan Message
	nextSub  int

	now func() time.Time
}

func NewHistory(limit int, collapse bool) *History {
	return &History{
		max:      max(1, limit),
		collapse: collapse,
		subs:     map[int]chan Message{},
		now:      time.Now,
	}
}

// SetLimits changes the cap and collapsing. Excess old messages are
// dropped immediately.
func (h *History) SetLimits(limit int, collapse bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max(1, limit)
	h.collapse = collapse
	h.trim()
}

// Add appends a message. With collapsing on, a message equal to the last
// one only bumps its count.
func (h *History) Add(sev Severity, text string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if n := len(h.messages); h.collapse && n > 0 {
		last := &h.messages[n-1]
		if last.Severity == sev && last.Text == text {
			last.Count++
			last.Time = now
			h.publish(*last)
			return *last
		}
	}
	h.seq++
	m := Message{Seq: h.seq, Time: now, Severity: sev, Text: text, Count: 1}
	h.messages = append(h.messages, m)
	h.trim()
	h.publish(m)
	return m
}

func (h *History) trim() {
	if over := len(h.messages) - h.max; over > 0 {
		h.messages = append(h.messages[:0], h.messages[over:]...)
	}
}

// publish never blocks; slow subscribers miss messages.
func (h *History) publish(m Message) {
	for _, ch := range h.subs {
		select {
		case ch <- m:
		default:
		}
	}
}

// Subscribe returns a channel receiving every new or collapsed message
// and a function that ends the subscription.
func (h *History) Subscribe(buffer int) (<-chan Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	ch := make(chan Message, buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Messages copies the whole history, oldest first.
func (h *History) Messages() []Message {
	return h.Tail(-1)
}

// Tail copies the newest n messages. A negative n returns all of them.
func (h *History) Tail(n int) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := 0
	if n >= 0 && n < len(h.messages) {
		start = len(h.messages) - n
	}
	out := make([]Message, len(h.messages)-start)
	copy(out, h.messages[start:])
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
