package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSolution(t *testing.T) {
	before := testutil.ToFloat64(solutionsTotal.WithLabelValues(ResultNoSolution))
	ObserveSolution(ResultNoSolution)
	ObserveSolution(ResultNoSolution)
	after := testutil.ToFloat64(solutionsTotal.WithLabelValues(ResultNoSolution))
	if after-before != 2 {
		t.Fatalf("delta=%v want 2", after-before)
	}
}

func TestObserveSinkError(t *testing.T) {
	before := testutil.ToFloat64(sinkErrorsTotal.WithLabelValues("mqtt"))
	ObserveSinkError("mqtt")
	if got := testutil.ToFloat64(sinkErrorsTotal.WithLabelValues("mqtt")) - before; got != 1 {
		t.Fatalf("delta=%v want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	ObserveSolution(ResultConverted)
	ObserveConverted(1714564800)

	path := filepath.Join(t.TempDir(), "gnss.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	body := string(b)
	for _, want := range []string{
		`gnss_solutions_total{result="converted"}`,
		"gnss_last_solution_timestamp_seconds ",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("textfile missing %q:\n%s", want, body)
		}
	}
}
