// Package progress renders the single redrawn download progress line.
package progress

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Percent returns how much of total the received chunks cover, clamped to [0, 100].
// The last chunk is usually short, so chunks*chunkSize may overshoot total.
func Percent(chunks, chunkSize, total int64) float64 {
	if total <= 0 {
		return 0
	}
	percent := float64(chunks*chunkSize) / float64(total) * 100
	return min(100, max(0, percent))
}

// Line formats the progress line for a chunk callback. A non-positive total means the
// size is unknown and only the downloaded amount is shown.
func Line(chunks, chunkSize, total int64) string {
	downloadedMB := float64(chunks*chunkSize) / humanize.MiByte
	if total > 0 {
		return fmt.Sprintf("\rProgress: %.1f%% (%.2fMB / %.2fMB)",
			Percent(chunks, chunkSize, total), downloadedMB, float64(total)/humanize.MiByte)
	}
	return fmt.Sprintf("\rDownloaded: %.2fMB", downloadedMB)
}

// Printer returns a callback that redraws the progress line on w.
func Printer(w io.Writer) func(chunks, chunkSize, total int64) {
	return func(chunks, chunkSize, total int64) {
		_, _ = io.WriteString(w, Line(chunks, chunkSize, total))
	}
}
