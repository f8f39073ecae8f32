package infrastructure

import (
	"io"

	"github.com/yourusername/gdfetch-go/internal/domain"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// ProgressBar renders transfer progress on a terminal. With a known total it
// counts chunks against ceil(total/chunk) and shows transferred/total bytes
// as the prefix; with an unknown total it only counts bytes.
type ProgressBar struct {
	out io.Writer
	bar *pb.ProgressBar
}

// NewProgressBar creates a renderer writing to out
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out}
}

// Update is a domain.ProgressFunc
func (p *ProgressBar) Update(state domain.ProgressState) {
	if p.bar == nil {
		p.bar = p.start(state)
	}

	if _, ok := state.TotalChunks(); ok {
		p.bar.Prefix(state.Description() + " ")
		p.bar.Set64(state.Chunks)
	} else {
		p.bar.Set64(state.BytesTransferred)
	}
	p.bar.Update()
}

func (p *ProgressBar) start(state domain.ProgressState) *pb.ProgressBar {
	var bar *pb.ProgressBar
	if total, ok := state.TotalChunks(); ok {
		bar = pb.New64(total).Postfix(" chunks")
	} else {
		bar = pb.New64(0).SetUnits(pb.U_BYTES).Prefix("Downloaded ")
		bar.ShowPercent = false
		bar.ShowBar = false
		bar.ShowTimeLeft = false
	}
	bar.Output = p.out
	bar.ManualUpdate = true
	return bar.Start()
}

// Finish closes the bar if one was started
func (p *ProgressBar) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
