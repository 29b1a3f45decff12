package usecase

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// lineWriter splits subprocess output into lines and hands each non-empty
// one to emit. Partial lines are held until the next newline or Flush.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(line string)
}

func newLineWriter(emit func(line string)) *lineWriter {
	return &lineWriter{emit: emit}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emitLine(line)
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emitLine(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emitLine(line string) {
	line = strings.TrimSpace(line)
	if line != "" {
		w.emit(line)
	}
}

// progressReader counts bytes and reports the running total each time it
// crosses another multiple of every.
type progressReader struct {
	r      io.Reader
	every  int64
	next   int64
	total  atomic.Int64
	report func(total int64)
}

func newProgressReader(r io.Reader, every int64, report func(total int64)) *progressReader {
	return &progressReader{r: r, every: every, next: every, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		total := p.total.Add(int64(n))
		if p.every > 0 && total >= p.next {
			p.report(total)
			p.next = (total/p.every + 1) * p.every
		}
	}
	return n, err
}

func (p *progressReader) Total() int64 {
	return p.total.Load()
}
