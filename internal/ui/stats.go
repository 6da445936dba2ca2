package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/jmana/internal/util"
)

type Stats struct {
	Chapters atomic.Int64
	Failed   atomic.Int64
	Images   atomic.Int64
	Bytes    atomic.Int64
}

func (s *Stats) Print(w io.Writer, elapsed time.Duration) {
	_, _ = fmt.Fprintln(w, "Download Summary:")
	_, _ = fmt.Fprintf(w, "Chapters: %d\n", s.Chapters.Load())
	if n := s.Failed.Load(); n > 0 {
		_, _ = fmt.Fprintf(w, "Failed:   %d\n", n)
	}
	_, _ = fmt.Fprintf(w, "Images:   %d\n", s.Images.Load())
	_, _ = fmt.Fprintf(w, "Data:     %s\n", util.Human(s.Bytes.Load()))
	_, _ = fmt.Fprintf(w, "Time:     %s\n", elapsed.Round(time.Second))
}
