package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gnss-base/internal/gnss"
	"gnss-base/internal/pose"
	"gnss-base/internal/record"
	"gnss-base/internal/replay"
)

type solutionSummary struct {
	Solutions   int
	TypeCounts  map[gnss.SolutionType]int
	First, Last time.Time

	// MaxSatellites is the largest satellite count seen in any solution.
	MaxSatellites int
}

func summarizeSolutions(sols []gnss.Solution) solutionSummary {
	s := solutionSummary{TypeCounts: map[gnss.SolutionType]int{}}
	for _, sol := range sols {
		s.Solutions++
		s.TypeCounts[sol.PositionType]++
		if sol.Satellites > s.MaxSatellites {
			s.MaxSatellites = sol.Satellites
		}
		if sol.Time.IsZero() {
			continue
		}
		if s.First.IsZero() || sol.Time.Before(s.First) {
			s.First = sol.Time
		}
		if sol.Time.After(s.Last) {
			s.Last = sol.Time
		}
	}
	return s
}

// Span is the time covered by the timestamped solutions.
func (s solutionSummary) Span() time.Duration {
	if s.First.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

func printSolutionSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	sols, err := replay.NewReader(f).ReadAll()
	if err != nil {
		return err
	}
	s := summarizeSolutions(sols)

	fmt.Fprintf(w, "path: %s (%s)\n", path, humanize.Bytes(uint64(fi.Size())))
	fmt.Fprintf(w, "solutions: %s\n", humanize.Comma(int64(s.Solutions)))
	fmt.Fprintf(w, "span: %s\n", s.Span())
	fmt.Fprintf(w, "max_satellites: %d\n", s.MaxSatellites)

	keys := make([]int, 0, len(s.TypeCounts))
	for k := range s.TypeCounts {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	fmt.Fprintf(w, "position_types:\n")
	for _, k := range keys {
		t := gnss.SolutionType(k)
		fmt.Fprintf(w, "  %s: %s\n", t, humanize.Comma(int64(s.TypeCounts[t])))
	}
	return nil
}

type poseSummary struct {
	Samples     int
	First, Last time.Time

	// Min and Max bound the finite positions; Located counts them.
	Located  int
	Min, Max pose.Vec3
}

func summarizePoses(samples []pose.Sample) poseSummary {
	s := poseSummary{}
	for _, p := range samples {
		s.Samples++
		if !p.Time.IsZero() {
			if s.First.IsZero() || p.Time.Before(s.First) {
				s.First = p.Time
			}
			if p.Time.After(s.Last) {
				s.Last = p.Time
			}
		}
		v := p.Position
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
			continue
		}
		if s.Located == 0 {
			s.Min, s.Max = v, v
		} else {
			s.Min = pose.Vec3{X: math.Min(s.Min.X, v.X), Y: math.Min(s.Min.Y, v.Y), Z: math.Min(s.Min.Z, v.Z)}
			s.Max = pose.Vec3{X: math.Max(s.Max.X, v.X), Y: math.Max(s.Max.Y, v.Y), Z: math.Max(s.Max.Z, v.Z)}
		}
		s.Located++
	}
	return s
}

func (s poseSummary) Span() time.Duration {
	if s.First.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

// printRecordSummary summarizes a pose database written by the record sink.
func printRecordSummary(ctx context.Context, w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	// Opening a missing path would create an empty database.
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	st := record.NewSqliteStore(path)
	defer st.Close()
	samples, err := st.Samples(ctx)
	if err != nil {
		return err
	}
	s := summarizePoses(samples)

	fmt.Fprintf(w, "path: %s (%s)\n", path, humanize.Bytes(uint64(fi.Size())))
	fmt.Fprintf(w, "poses: %s\n", humanize.Comma(int64(s.Samples)))
	fmt.Fprintf(w, "span: %s\n", s.Span())
	fmt.Fprintf(w, "located: %s\n", humanize.Comma(int64(s.Located)))
	if s.Located > 0 {
		fmt.Fprintf(w, "extent_x: %.3f .. %.3f\n", s.Min.X, s.Max.X)
		fmt.Fprintf(w, "extent_y: %.3f .. %.3f\n", s.Min.Y, s.Max.Y)
		fmt.Fprintf(w, "extent_z: %.3f .. %.3f\n", s.Min.Z, s.Max.Z)
	}
	return nil
}
