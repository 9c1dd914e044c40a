// Package insight keeps the process-lifetime ledger of free-text
// insights and renders them into a memo on demand.
package insight

import (
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/burrowdb/burrow/telemetry"
)

// Fixed rendering strings. Tests pin these; change them deliberately.
const (
	EmptyMemo  = "No insights have been recorded yet."
	memoHeader = "Insights Memo\n=============\n"
)

// Ledger is an append-only ordered sequence of insight strings. It is
// the only core-owned mutable state besides the database handle; HTTP
// handlers run on parallel goroutines, so appends are mutex-guarded.
type Ledger struct {
	mu       sync.Mutex
	insights []string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records one insight at the end of the sequence. There is no
// deduplication and no size cap; the ledger lives and dies with the
// process.
func (l *Ledger) Append(text string) {
	l.mu.Lock()
	l.insights = append(l.insights, text)
	n := len(l.insights)
	l.mu.Unlock()

	telemetry.InsightCount.Set(float64(n))
	log.Debug().Int("count", n).Msg("Insight recorded")
}

// Len returns the current number of recorded insights.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.insights)
}

// Synthesize renders the memo: the fixed empty message when nothing is
// recorded, otherwise a header, one bullet per insight in append
// order, and a total line only when more than one insight exists.
func (l *Ledger) Synthesize() string {
	l.mu.Lock()
	insights := make([]string, len(l.insights))
	copy(insights, l.insights)
	l.mu.Unlock()

	if len(insights) == 0 {
		return EmptyMemo
	}

	var b strings.Builder
	b.WriteString(memoHeader)
	b.WriteString("\n")
	for _, text := range insights {
		b.WriteString("- ")
		b.WriteString(text)
		b.WriteString("\n")
	}

	if len(insights) > 1 {
		b.WriteString("\n")
		b.WriteString("Total insights recorded: ")
		b.WriteString(strconv.Itoa(len(insights)))
		b.WriteString("\n")
	}

	return b.String()
}
