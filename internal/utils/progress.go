package utils

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// Progress is an entry counter bar drawn on stderr when it is a terminal
type Progress struct {
	container   *mpb.Progress
	bar         *mpb.Bar
	current     int64
	description atomic.Pointer[string]
}

var descLength = 24

// NewProgress creates a progress bar over total items. It draws nothing when
// disabled or when stderr is not a terminal.
func NewProgress(total int, enabled bool) *Progress {
	p := &Progress{}
	if !enabled || !isTerminal() {
		return p
	}
	p.start(os.Stderr, total)
	return p
}

func (p *Progress) start(out io.Writer, total int) {
	fmt.Fprintln(out)

	p.container = mpb.New(
		mpb.WithOutput(out),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				return Truncate(p.Description(), descLength)
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)
}

// Enabled reports whether the bar is drawn
func (p *Progress) Enabled() bool {
	return p.bar != nil
}

// Increment advances the bar by one item labelled description
func (p *Progress) Increment(description string) {
	p.current++
	if p.bar == nil {
		return
	}
	p.description.Store(&description)
	p.bar.SetCurrent(p.current)
}

// Description returns the label of the last drawn item
func (p *Progress) Description() string {
	if d := p.description.Load(); d != nil {
		return *d
	}
	return ""
}

// Count returns how many items were reported
func (p *Progress) Count() int64 {
	return p.current
}

// Finish waits for the bar to render its final state
func (p *Progress) Finish() {
	if p.container == nil {
		return
	}
	if !p.bar.Completed() {
		p.bar.Abort(false)
	}
	p.container.Wait()
	fmt.Fprintln(os.Stderr)
}

// Truncate shortens s to at most n runes, marking the cut with ".."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 2 {
		return string(r[:n])
	}
	return string(r[:n-2]) + ".."
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
