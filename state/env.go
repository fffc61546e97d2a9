// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"dsx2srt/config"
	"dsx2srt/timecode"
	"dsx2srt/uxml"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by convert subcommand
	Recursive    bool
	SkipExisting bool
	Strict       bool
	CodePage     encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Normalizer returns timecode normalizer for document with the given frame
// rate which follows configured missing frame rate policy.
func (e *LocalEnv) Normalizer(rate timecode.Rate) timecode.Normalizer {
	n := timecode.Normalizer{Rate: rate}
	if e.Cfg != nil {
		n.Policy = e.Cfg.Document.MissingFrameRate
	}
	return n
}

// Extractor returns cue text extractor set up according to configuration.
func (e *LocalEnv) Extractor() *uxml.Extractor {
	if e.Cfg == nil {
		return uxml.NewExtractor(uxml.ExtractOptions{})
	}
	doc := e.Cfg.Document
	return uxml.NewExtractor(uxml.ExtractOptions{
		ItalicOpen:            doc.Italic.Open,
		ItalicClose:           doc.Italic.Close,
		DuplicateItalicBreaks: doc.DuplicateItalicBreaks,
	})
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
