// Package watch keeps a list of chains whose values are re-read every
// frame.
package watch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"scenedebug/internal/inspect"
	"scenedebug/internal/refchain"

	"github.com/google/uuid"
	"github.com/rodaine/table"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoWatch   = errors.New("no such watch")
	ErrAmbiguous = errors.New("ambiguous watch id")
)

// Watch is one watched chain and its value as of the last refresh.
type Watch struct {
	ID     uuid.UUID    `json:"id"`
	Path   string       `json:"path"`
	Type   string       `json:"type,omitempty"`
	Kind   inspect.Kind `json:"kind"`
	Value  string       `json:"value"`
	Err    string       `json:"error,omitempty"`
	Frames uint64       `json:"frames"`

	chain *refchain.Chain
}

func (w *Watch) Chain() *refchain.Chain { return w.chain }

// ShortID is the first block of the id, enough to name a watch in the
// console.
func (w *Watch) ShortID() string {
	s := w.ID.String()
	return s[:8]
}

type List struct {
	explorer *inspect.Explorer
	watches  []*Watch
}

func NewList(x *inspect.Explorer) *List {
	return &List{explorer: x}
}

// Add watches c. Watching a chain twice returns the existing watch.
func (l *List) Add(c *refchain.Chain) *Watch {
	for _, w := range l.watches {
		if w.chain.Equal(c) {
			return w
		}
	}
	w := &Watch{ID: uuid.New(), Path: c.String(), chain: c, Value: "null"}
	l.watches = append(l.watches, w)
	l.refreshOne(w)
	log.WithFields(log.Fields{"id": w.ShortID(), "path": w.Path}).Debug("Watch added")
	return w
}

func (l *List) Remove(id uuid.UUID) bool {
	for i, w := range l.watches {
		if w.ID == id {
			l.watches = append(l.watches[:i], l.watches[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup finds a watch by full id or by a unique id prefix.
func (l *List) Lookup(id string) (*Watch, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, ErrNoWatch
	}
	var found *Watch
	for _, w := range l.watches {
		if !strings.HasPrefix(w.ID.String(), id) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
		}
		found = w
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoWatch, id)
	}
	return found, nil
}

// Refresh re-evaluates every watch. A watch whose target is gone reads
// null and keeps its path so it recovers if the chain resolves again.
func (l *List) Refresh() {
	for _, w := range l.watches {
		l.refreshOne(w)
	}
}

func (l *List) refreshOne(w *Watch) {
	n := l.explorer.Describe(w.chain)
	w.Type = n.Type
	w.Kind = n.Kind
	w.Value = n.Value
	w.Err = n.Err
	w.Frames++
}

// Snapshot copies the current watch values.
func (l *List) Snapshot() []Watch {
	out := make([]Watch, len(l.watches))
	for i, w := range l.watches {
		out[i] = *w
	}
	return out
}

func (l *List) Len() int { return len(l.watches) }

func (l *List) Clear() {
	l.watches = nil
}

// WriteTable prints watches as a table.
func WriteTable(w io.Writer, watches []Watch) {
	t := table.New("ID", "Path", "Type", "Value").WithWriter(w)
	for _, wt := range watches {
		value := wt.Value
		if wt.Err != "" {
			value += " !" + wt.Err
		}
		t.AddRow(wt.ShortID(), wt.Path, wt.Type, value)
	}
	t.Print()
}
