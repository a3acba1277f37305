// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPrefetchFrames is the ring size used when NewPrefetcher is given a
// non-positive frame count.
const DefaultPrefetchFrames = 16384

// idleWait bounds how long the fill goroutine sleeps when the inner source
// reports no data.
const idleWait = 2 * time.Millisecond

type seekRequest struct {
	frame int64
	gen   uint64
}

// Prefetcher decodes its inner source on a background goroutine into a
// single-producer single-consumer ring. ReadSamples only copies out of the
// ring: it never blocks, allocates or locks, and returns (0, nil) when the
// ring is momentarily empty.
//
// ReadSamples and SeekFrame must be called from one goroutine. Close may be
// called from any goroutine once that reader is done with the source.
type Prefetcher struct {
	src      Source
	seeker   Seeker
	channels int

	ring []float32
	mask uint64
	head atomic.Uint64 // written by the fill goroutine
	tail atomic.Uint64 // written by the reader

	// a seek is in flight while reqGen != ackGen
	reqGen atomic.Uint64
	ackGen atomic.Uint64
	seekCh chan seekRequest

	eof atomic.Bool
	err error // valid once eof is set

	wake   chan struct{}
	primed chan struct{}
	done   chan struct{}
	closed atomic.Bool

	closeOnce sync.Once
	wg        sync.WaitGroup
	closeErr  error
}

// NewPrefetcher starts filling a ring of at least frames frames from src.
func NewPrefetcher(src Source, frames int) *Prefetcher {
	if frames <= 0 {
		frames = DefaultPrefetchFrames
	}
	channels := max(src.Channels(), 1)

	size := uint64(1)
	for size < uint64(frames*channels) {
		size <<= 1
	}

	p := &Prefetcher{
		src:      src,
		channels: channels,
		ring:     make([]float32, size),
		mask:     size - 1,
		seekCh:   make(chan seekRequest, 1),
		wake:     make(chan struct{}, 1),
		primed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.seeker, _ = src.(Seeker)

	p.wg.Add(1)
	go p.fill()

	return p
}

func (p *Prefetcher) SampleRate() int { return p.src.SampleRate() }
func (p *Prefetcher) Channels() int   { return p.src.Channels() }
func (p *Prefetcher) BufSize() int    { return p.src.BufSize() }

// Primed is closed once the ring has been filled for the first time or the
// source ended, whichever comes first.
func (p *Prefetcher) Primed() <-chan struct{} { return p.primed }

// Buffered returns the number of samples ready to be read.
func (p *Prefetcher) Buffered() int {
	return int(p.head.Load() - p.tail.Load())
}

func (p *Prefetcher) ReadSamples(dst []float32) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	if p.reqGen.Load() != p.ackGen.Load() {
		return 0, nil
	}

	// eof before head: once eof is observed, head is final
	ended := p.eof.Load()
	h := p.head.Load()
	t := p.tail.Load()

	avail := int(h - t)
	if avail == 0 {
		if ended {
			if p.err != nil {
				return 0, p.err
			}
			return 0, io.EOF
		}
		return 0, nil
	}

	n := min(avail, len(dst))
	n -= n % p.channels

	start := int(t & p.mask)
	c := copy(dst[:n], p.ring[start:])
	if c < n {
		copy(dst[c:n], p.ring)
	}
	p.tail.Store(t + uint64(n))

	select {
	case p.wake <- struct{}{}:
	default:
	}

	return n, nil
}

// SeekFrame requests an asynchronous seek. Reads return (0, nil) until the
// fill goroutine has repositioned the source and discarded stale data.
func (p *Prefetcher) SeekFrame(frame int64) error {
	if p.seeker == nil {
		return ErrNotSeekable
	}
	if p.closed.Load() {
		return ErrClosed
	}

	req := seekRequest{frame: frame, gen: p.reqGen.Add(1)}

	// only this goroutine sends, so after dropping a stale request there is room
	select {
	case <-p.seekCh:
	default:
	}
	select {
	case p.seekCh <- req:
	default:
	}

	return nil
}

// Close stops the fill goroutine and closes the inner source.
func (p *Prefetcher) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)
		p.wg.Wait()
		p.closeErr = p.src.Close()
	})

	return p.closeErr
}

func (p *Prefetcher) fill() {
	defer p.wg.Done()

	chunk := make([]float32, p.chunkSize())
	primed := false
	markPrimed := func() {
		if !primed {
			primed = true
			close(p.primed)
		}
	}
	defer markPrimed()

	for {
		select {
		case <-p.done:
			return
		case req := <-p.seekCh:
			p.seek(req)
			continue
		default:
		}

		free := len(p.ring) - int(p.head.Load()-p.tail.Load())
		if p.eof.Load() || free < len(chunk) {
			if free < len(chunk) {
				markPrimed()
			}
			if !p.wait(0) {
				return
			}
			continue
		}

		n, err := p.src.ReadSamples(chunk)
		n -= n % p.channels
		if n > 0 {
			p.write(chunk[:n])
		}

		switch {
		case errors.Is(err, io.EOF):
			p.eof.Store(true)
			markPrimed()
		case err != nil:
			p.err = err
			p.eof.Store(true)
			markPrimed()
		case n == 0:
			if !p.wait(idleWait) {
				return
			}
		}
	}
}

func (p *Prefetcher) chunkSize() int {
	size := p.src.BufSize()
	if size <= 0 {
		size = 4096
	}
	size = min(size, len(p.ring)/2)
	size -= size % p.channels

	return max(size, p.channels)
}

func (p *Prefetcher) write(data []float32) {
	h := p.head.Load()
	start := int(h & p.mask)
	c := copy(p.ring[start:], data)
	if c < len(data) {
		copy(p.ring, data[c:])
	}
	p.head.Store(h + uint64(len(data)))
}

// seek runs on the fill goroutine. The reader is parked on reqGen != ackGen,
// so it is safe to rewind head onto tail here.
func (p *Prefetcher) seek(req seekRequest) {
	err := p.seeker.SeekFrame(req.frame)

	p.head.Store(p.tail.Load())
	p.err = nil
	p.eof.Store(false)
	if err != nil {
		p.err = err
		p.eof.Store(true)
	}

	p.ackGen.Store(req.gen)
}

// wait blocks until the reader frees space, a seek arrives, d elapses (when
// non-zero) or the prefetcher is closed. It reports false on close.
func (p *Prefetcher) wait(d time.Duration) bool {
	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-p.done:
		return false
	case req := <-p.seekCh:
		p.seek(req)
	case <-p.wake:
	case <-timeout:
	}

	return true
}
