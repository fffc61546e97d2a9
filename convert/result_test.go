package convert

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSummary(t *testing.T) {
	errA, errB := errors.New("broken a"), errors.New("broken b")

	sum := &Summary{}
	sum.Add(Result{Source: "ok.dsx", Status: StatusConverted})
	sum.Add(failed("a.dsx", errA))
	sum.Add(Result{Source: "same.dsx", Status: StatusSkipped})
	sum.Add(failed("b.dsx", errB))

	if sum.Count(StatusConverted) != 1 || sum.Count(StatusSkipped) != 1 || sum.Count(StatusFailed) != 2 {
		t.Errorf("unexpected counts: %+v", sum.Results)
	}

	err := sum.Err()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("combined error %v must wrap both failures", err)
	}
	if errs := multierr.Errors(err); len(errs) != 2 || !strings.HasPrefix(errs[0].Error(), "a.dsx: ") {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestSummary_NoFailures(t *testing.T) {
	sum := &Summary{}
	if err := sum.Err(); err != nil {
		t.Errorf("empty summary error = %v", err)
	}
	sum.Add(Result{Source: "ok.dsx", Status: StatusConverted})
	if err := sum.Err(); err != nil {
		t.Errorf("summary error = %v", err)
	}
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusConverted: "converted",
		StatusSkipped:   "skipped",
		StatusFailed:    "failed",
		Status(7):       "Status(7)",
	}
	for st, want := range tests {
		if got := st.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		sum := &Summary{}
		sum.Add(Result{Source: "ok.dsx", Status: StatusConverted})

		NewLogNotifier(zap.New(core)).Notify(sum)

		entries := logs.FilterMessage("Batch done").All()
		if len(entries) != 1 {
			t.Fatalf("expected acknowledgment, got %v", logs.All())
		}
		if got := entries[0].ContextMap()["converted"]; got != int64(1) {
			t.Errorf("converted = %v, want 1", got)
		}
	})

	t.Run("failures", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		sum := &Summary{}
		sum.Add(failed("a.dsx", errors.New("broken")))
		sum.Add(failed("b.dsx", errors.New("broken")))

		NewLogNotifier(zap.New(core)).Notify(sum)

		if logs.FilterMessage("Batch done with failures").Len() != 1 {
			t.Errorf("expected acknowledgment, got %v", logs.All())
		}
		if logs.FilterMessage("Failed").Len() != 2 {
			t.Errorf("expected each failure to be listed, got %v", logs.All())
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		NewLogNotifier(zap.New(core)).Notify(&Summary{})
		if logs.Len() != 1 {
			t.Errorf("empty batch must be acknowledged too, got %v", logs.All())
		}
	})
}
