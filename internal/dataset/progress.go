package dataset

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const progressBarWidth = 50

// progressBar renders a single in-place status line per completed sample:
//
//	=========                                         | 18% (0:00:04 / 0:00:18), 5.12it/s
//
// The line ends in '\r' so the next update overwrites it.
type progressBar struct {
	out   io.Writer
	total int
}

func newProgressBar(out io.Writer, total int) *progressBar {
	return &progressBar{out: out, total: total}
}

// Update writes the bar for done completed samples. A nil writer disables it.
func (p *progressBar) Update(done int, elapsed time.Duration) {
	if p == nil || p.out == nil || p.total <= 0 {
		return
	}
	_, _ = io.WriteString(p.out, p.render(done, elapsed))
}

func (p *progressBar) render(done int, elapsed time.Duration) string {
	frac := float64(done) / float64(p.total)
	filled := int(frac * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}

	remaining := time.Duration(0)
	if done > 0 {
		remaining = time.Duration(float64(p.total-done) / float64(done) * float64(elapsed))
	}

	return fmt.Sprintf("%s%s| %d%% (%s / %s), %s\r",
		strings.Repeat("=", filled),
		strings.Repeat(" ", progressBarWidth-filled),
		int(frac*100),
		formatHMS(elapsed),
		formatHMS(remaining),
		throughput(done, elapsed),
	)
}

// throughput reports seconds per sample when a sample takes longer than a
// second, samples per second otherwise.
func throughput(done int, elapsed time.Duration) string {
	if done <= 0 || elapsed <= 0 {
		return "?it/s"
	}
	perIt := elapsed.Seconds() / float64(done)
	if perIt > 1 {
		return fmt.Sprintf("%.2fs/it", perIt)
	}
	return fmt.Sprintf("%.2fit/s", float64(done)/elapsed.Seconds())
}

// formatHMS prints d as H:MM:SS, truncated to whole seconds.
func formatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// syncWriter serialises writes from concurrent workers sharing one terminal.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
