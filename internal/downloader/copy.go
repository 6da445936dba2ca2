package downloader

import (
	"io"
)

// progressWriter reports the running byte count after each write.
type progressWriter struct {
	w       io.Writer
	n       int64
	onWrite func(total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		p.n += int64(n)
		if p.onWrite != nil {
			p.onWrite(p.n)
		}
	}
	return n, err
}

func copyWithProgress(dst io.Writer, src io.Reader, progress func(done int64)) (int64, error) {
	pw := &progressWriter{w: dst, onWrite: progress}
	return io.CopyBuffer(pw, src, make([]byte, 32*1024))
}
