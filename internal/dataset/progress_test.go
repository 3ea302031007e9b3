package dataset

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgressBarRender(t *testing.T) {
	bar := newProgressBar(nil, 4)

	got := bar.render(1, 2*time.Second)
	want := strings.Repeat("=", 12) + strings.Repeat(" ", 38) + "| 25% (0:00:02 / 0:00:06), 2.00s/it\r"
	if got != want {
		t.Fatalf("render(1) = %q, want %q", got, want)
	}

	got = bar.render(4, time.Second)
	want = strings.Repeat("=", 50) + "| 100% (0:00:01 / 0:00:00), 4.00it/s\r"
	if got != want {
		t.Fatalf("render(4) = %q, want %q", got, want)
	}
}

func TestProgressBarUpdateWritesInPlace(t *testing.T) {
	var buf bytes.Buffer
	bar := newProgressBar(&buf, 2)
	bar.Update(1, time.Second)
	bar.Update(2, 2*time.Second)

	out := buf.String()
	if strings.Count(out, "\r") != 2 || strings.Contains(out, "\n") {
		t.Fatalf("progress output should be two carriage-return terminated updates: %q", out)
	}
}

func TestProgressBarNilWriterIsSilent(t *testing.T) {
	var bar *progressBar
	bar.Update(1, time.Second)
	newProgressBar(nil, 3).Update(1, time.Second)
}

func TestFormatHMS(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "0:00:00",
		59 * time.Second:        "0:00:59",
		3725 * time.Second:      "1:02:05",
		1500 * time.Millisecond: "0:00:01",
		-time.Second:            "0:00:00",
	}
	for in, want := range cases {
		if got := formatHMS(in); got != want {
			t.Fatalf("formatHMS(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestThroughputWithoutElapsedTime(t *testing.T) {
	if got := throughput(3, 0); got != "?it/s" {
		t.Fatalf("throughput = %q", got)
	}
}
