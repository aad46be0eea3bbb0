package download

import (
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress observes a disk transfer. Advance is called after every chunk
// written; Done is called exactly once per Start.
type Progress interface {
	Start(name string, total int64)
	Advance(name string, received, total int64)
	Done(name string, err error)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) Start(string, int64)          {}
func (NopProgress) Advance(string, int64, int64) {}
func (NopProgress) Done(string, error)           {}

// LogProgress reports transfers through the logger at notice level, so
// progress is visible at every verbosity. A line is written for each tenth
// of the file, and at least every interval while bytes keep arriving.
type LogProgress struct {
	interval time.Duration

	mu    sync.Mutex
	state map[string]*logState
}

type logState struct {
	step int
	at   time.Time
}

// DefaultLogInterval bounds the silence between progress lines.
const DefaultLogInterval = 5 * time.Second

// NewLogProgress returns a logger-backed Progress.
func NewLogProgress() *LogProgress {
	return &LogProgress{interval: DefaultLogInterval, state: make(map[string]*logState)}
}

func (p *LogProgress) Start(name string, total int64) {
	p.mu.Lock()
	p.state[name] = &logState{step: -1, at: time.Now()}
	p.mu.Unlock()
	logger.Notice("downloading", logger.Fields{"file": name, "size": humanize.IBytes(uint64(total))})
}

func (p *LogProgress) Advance(name string, received, total int64) {
	if total <= 0 {
		return
	}
	pct := int(received * 100 / total)
	step := pct / 10

	p.mu.Lock()
	st, ok := p.state[name]
	if !ok {
		st = &logState{step: -1, at: time.Now()}
		p.state[name] = st
	}
	now := time.Now()
	due := step != st.step || now.Sub(st.at) >= p.interval
	if due {
		st.step = step
		st.at = now
	}
	p.mu.Unlock()

	if !due {
		return
	}
	remaining := total - received
	if remaining < 0 {
		remaining = 0
	}
	logger.Notice("download progress", logger.Fields{
		"file":      name,
		"percent":   pct,
		"remaining": humanize.IBytes(uint64(remaining)),
	})
}

func (p *LogProgress) Done(name string, err error) {
	p.mu.Lock()
	delete(p.state, name)
	p.mu.Unlock()
	if err != nil {
		logger.Warn("download attempt failed", logger.Fields{"file": name, "error": err.Error()})
	}
}

// BarProgress draws one terminal progress bar per transfer.
type BarProgress struct {
	p *mpb.Progress

	mu   sync.Mutex
	bars map[string]*mpb.Bar
}

// NewBarProgress renders bars to out. Call Wait once all transfers ended.
func NewBarProgress(out io.Writer) *BarProgress {
	return &BarProgress{
		p: mpb.New(
			mpb.WithOutput(out),
			mpb.WithWidth(60),
			mpb.WithRefreshRate(180*time.Millisecond),
		),
		bars: make(map[string]*mpb.Bar),
	}
}

func (b *BarProgress) Start(name string, total int64) {
	bar := b.p.New(total,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding("-").Rbound("|"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "✅ "),
			decor.Name(" ] "),
			decor.AverageSpeed(decor.SizeB1024(0), "% .2f", decor.WCSyncWidth),
		),
	)
	b.mu.Lock()
	b.bars[name] = bar
	b.mu.Unlock()
}

func (b *BarProgress) Advance(name string, received, _ int64) {
	b.mu.Lock()
	bar := b.bars[name]
	b.mu.Unlock()
	if bar != nil {
		bar.SetCurrent(received)
	}
}

func (b *BarProgress) Done(name string, err error) {
	b.mu.Lock()
	bar := b.bars[name]
	delete(b.bars, name)
	b.mu.Unlock()
	if bar == nil {
		return
	}
	if err != nil || !bar.Completed() {
		bar.Abort(false)
	}
}

// Wait blocks until every bar has been rendered for the last time.
func (b *BarProgress) Wait() {
	b.p.Wait()
}
