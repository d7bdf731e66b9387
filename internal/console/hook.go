package console

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Hook copies logrus entries into a History.
type Hook struct {
	history *History
}

func NewHook(h *History) *Hook {
	return &Hook{history: h}
}

func (k *Hook) Levels() []log.Level {
	return log.AllLevels
}

func (k *Hook) Fire(e *log.Entry) error {
	k.history.Add(SeverityOf(e.Level), entryText(e))
	return nil
}

// entryText renders "message key=value ..." with keys sorted.
func entryText(e *log.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, k := range slices.Sorted(maps.Keys(e.Data)) {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}
