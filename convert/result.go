package convert

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Status is outcome of a single file conversion.
type Status int

const (
	StatusConverted Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result describes what happened to a single source document.
type Result struct {
	// Source is name relative to the input (directory, archive or file).
	Source string
	Output string
	RefID  string
	Cues   int
	Status Status
	Err    error
}

func failed(src string, err error) Result {
	return Result{Source: src, Status: StatusFailed, Err: err}
}

// Summary collects results of the whole batch in processing order.
type Summary struct {
	Results []Result
}

func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
}

func (s *Summary) Count(st Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == st {
			n++
		}
	}
	return n
}

// Err combines errors of all failed files, nil when nothing failed.
func (s *Summary) Err() error {
	var err error
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	return err
}

// Notifier acknowledges batch completion.
type Notifier interface {
	Notify(s *Summary)
}

type logNotifier struct {
	log *zap.Logger
}

// NewLogNotifier returns notifier reporting batch summary to the log.
func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(s *Summary) {
	fields := []zap.Field{
		zap.Int("converted", s.Count(StatusConverted)),
		zap.Int("skipped", s.Count(StatusSkipped)),
		zap.Int("failed", s.Count(StatusFailed)),
	}
	if s.Count(StatusFailed) == 0 {
		n.log.Info("Batch done", fields...)
		return
	}
	n.log.Warn("Batch done with failures", fields...)
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			n.log.Warn("Failed", zap.String("file", r.Source), zap.Error(r.Err))
		}
	}
}
