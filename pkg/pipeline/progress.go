package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

const progressInterval = 10

type progress struct {
	w     io.Writer
	total int
	width int
}

func newProgress(w io.Writer, total int) *progress {
	if w == nil {
		w = io.Discard
	}
	return &progress{w: w, total: total, width: len(strconv.Itoa(total))}
}

// step reports done files every progressInterval files.
func (p *progress) step(done int) {
	if done%progressInterval != 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%0*d / %0*d Processing !!", p.width, done, p.width, p.total)
}

func (p *progress) finish(elapsed time.Duration) {
	fmt.Fprintf(p.w, "\n- processing time: %.1fmin\n", elapsed.Minutes())
}
