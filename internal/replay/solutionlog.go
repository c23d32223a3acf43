package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gnss-base/internal/gnss"
	"gnss-base/internal/pose"
)

// Log format: newline-delimited JSON.
//
// - Blank lines ignored.
// - Lines starting with '#' ignored.
// - Every other line is one gnss.Solution object.
//
// Pose output uses the same framing, one pose.Sample per line.

type Reader struct {
	s    *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4*1024), 1024*1024)
	return &Reader{s: s}
}

// Next returns the next solution, or io.EOF at the end of the log.
func (rr *Reader) Next() (gnss.Solution, error) {
	for rr.s.Scan() {
		rr.line++
		line := strings.TrimSpace(rr.s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var sol gnss.Solution
		if err := json.Unmarshal([]byte(line), &sol); err != nil {
			return gnss.Solution{}, fmt.Errorf("invalid solution on line %d: %w", rr.line, err)
		}
		return sol, nil
	}
	if err := rr.s.Err(); err != nil {
		return gnss.Solution{}, err
	}
	return gnss.Solution{}, io.EOF
}

func (rr *Reader) ReadAll() ([]gnss.Solution, error) {
	out := make([]gnss.Solution, 0, 1024)
	for {
		sol, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sol)
	}
}

// PoseWriter writes pose samples as NDJSON.
type PoseWriter struct {
	w         *bufio.Writer
	c         io.Closer
	lineFlush bool
	closed    bool
}

// NewPoseWriter wraps w and flushes after every sample, so a reader on the
// other end of a pipe sees samples as they are produced. Close flushes but
// does not close w.
func NewPoseWriter(w io.Writer) *PoseWriter {
	return &PoseWriter{w: bufio.NewWriterSize(w, 64*1024), lineFlush: true}
}

// CreatePoseWriter creates (or truncates) path.
func CreatePoseWriter(path string) (*PoseWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &PoseWriter{w: bufio.NewWriterSize(f, 64*1024), c: f}, nil
}

func (pw *PoseWriter) Emit(_ context.Context, s pose.Sample) error {
	if pw.closed {
		return errors.New("pose writer is closed")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := pw.w.Write(b); err != nil {
		return err
	}
	if pw.lineFlush {
		return pw.w.Flush()
	}
	return nil
}

func (pw *PoseWriter) Flush() error {
	if pw.closed {
		return nil
	}
	return pw.w.Flush()
}

func (pw *PoseWriter) Close() error {
	if pw.closed {
		return nil
	}
	pw.closed = true
	err := pw.w.Flush()
	if pw.c != nil {
		if cerr := pw.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Sleeper blocks for d or until ctx is done, whichever comes first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pacer spaces out solutions by the difference of their timestamps.
//
// Speed: 1.0 = real time, 2.0 = 2x speed (half waits), 0.5 = half speed.
// Solutions without a timestamp, or going back in time, are not delayed.
type Pacer struct {
	speed   float64
	sleeper Sleeper
	last    time.Time
}

func NewPacer(speed float64, sleeper Sleeper) (*Pacer, error) {
	if !(speed > 0) {
		return nil, fmt.Errorf("speed must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	return &Pacer{speed: speed, sleeper: sleeper}, nil
}

// Wait blocks until the solution stamped t is due. It returns ctx.Err() if
// ctx is done first; the pacing clock is not advanced in that case.
func (p *Pacer) Wait(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		return nil
	}
	if !p.last.IsZero() {
		wait := t.Sub(p.last)
		if wait > 0 {
			wait = time.Duration(float64(wait) / p.speed)
			if wait > 0 {
				if err := p.sleeper.Sleep(ctx, wait); err != nil {
					return err
				}
			}
		}
	}
	if t.After(p.last) {
		p.last = t
	}
	return nil
}
