package domain

import (
	"fmt"
	"math"
)

// DefaultChunkSize is the read/write unit of the streaming copy
const DefaultChunkSize = 32768

// ExpectedSize is the total size of a transfer when the server reports one
type ExpectedSize struct {
	Bytes int64
	Known bool
}

// KnownSize returns an ExpectedSize of n bytes
func KnownSize(n int64) ExpectedSize {
	return ExpectedSize{Bytes: n, Known: true}
}

// UnknownSize returns an ExpectedSize with no value
func UnknownSize() ExpectedSize {
	return ExpectedSize{}
}

// String renders the size, or "unknown"
func (s ExpectedSize) String() string {
	if !s.Known {
		return "unknown"
	}
	return FormatSize(s.Bytes)
}

// ProgressState is the cumulative state of one transfer, updated once per chunk
type ProgressState struct {
	BytesTransferred int64
	Total            ExpectedSize
	Chunks           int64
	ChunkSize        int
}

// TotalChunks returns ceil(Total/ChunkSize) when the total is known
func (p ProgressState) TotalChunks() (int64, bool) {
	if !p.Total.Known || p.ChunkSize <= 0 {
		return 0, false
	}
	return int64(math.Ceil(float64(p.Total.Bytes) / float64(p.ChunkSize))), true
}

// Ratio returns chunks-so-far over the expected chunk count.
// ok is false when the total is unknown.
func (p ProgressState) Ratio() (ratio float64, ok bool) {
	total, ok := p.TotalChunks()
	if !ok {
		return 0, false
	}
	if total == 0 {
		return 1, true
	}
	return float64(p.Chunks) / float64(total), true
}

// Description renders "Downloaded <a> / <b>", or "Downloaded <a>" when the total is unknown
func (p ProgressState) Description() string {
	if !p.Total.Known {
		return fmt.Sprintf("Downloaded %s", FormatSize(p.BytesTransferred))
	}
	return fmt.Sprintf("Downloaded %s / %s", FormatSize(p.BytesTransferred), FormatSize(p.Total.Bytes))
}

// ProgressFunc receives a progress update after every chunk written
type ProgressFunc func(state ProgressState)

var sizeUnits = []string{"B", "K", "M", "G", "T", "P", "E", "Z"}

// FormatSize renders a byte count on a 1024-based ladder with one decimal,
// e.g. 1536 -> "1.5 K". Negative counts use the same ladder.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range sizeUnits {
		// compare the rounded value so 1023.96 K renders as 1.0 M, not 1024.0 K
		if math.Abs(math.Round(size*10)/10) < 1024.0 {
			return fmt.Sprintf("%3.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%3.1f Y", size)
}
