package output

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// ProgressTracker renders a single in-place progress line for one download.
// Workers feed it through Update; a ticker goroutine repaints.
type ProgressTracker struct {
	total      atomic.Int64
	downloaded atomic.Int64
	startTime  time.Time
	done       chan struct{}
	finished   chan struct{}
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		startTime: time.Now(),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
}

// Update is safe to call from any worker goroutine.
func (p *ProgressTracker) Update(downloaded, total int64) {
	p.downloaded.Store(downloaded)
	p.total.Store(total)
}

// StartDisplay begins repainting the progress line until Stop is called.
// Nothing is drawn when stdout is not a terminal.
func (p *ProgressTracker) StartDisplay() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		close(p.finished)
		return
	}
	go func() {
		defer close(p.finished)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				p.render()
				fmt.Println()
				return
			case <-ticker.C:
				p.render()
			}
		}
	}()
}

func (p *ProgressTracker) Stop() {
	close(p.done)
	<-p.finished
}

func (p *ProgressTracker) render() {
	downloaded := p.downloaded.Load()
	total := p.total.Load()
	elapsed := time.Since(p.startTime).Seconds()
	var speed string
	if elapsed > 0 {
		speed = humanize.IBytes(uint64(float64(downloaded)/elapsed)) + "/s"
	} else {
		speed = "0 B/s"
	}
	line := fmt.Sprintf("%s %s / %s %s %s",
		progressBar(downloaded, total, 30),
		humanize.IBytes(uint64(downloaded)),
		humanize.IBytes(uint64(total)),
		StyleSymbols["bullet"],
		speed)
	width := terminalWidth()
	if len(line) > width {
		line = line[:width]
	}
	fmt.Printf("\r\033[K%s", line)
}

func progressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%%", bar, percent*100))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
