package convert

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dsx2srt/timecode"
	"dsx2srt/uxml"
)

func textCue(index int, begin, end, text string) uxml.Cue {
	return uxml.Cue{
		Index: index,
		Begin: begin,
		End:   end,
		Content: uxml.Node{Kind: uxml.NodeElement, Tag: "p", Children: []uxml.Node{
			{Kind: uxml.NodeText, Text: text},
		}},
	}
}

func TestBuildSubtitle(t *testing.T) {
	doc := &uxml.Document{
		FrameRate: timecode.NewRate(25),
		Cues: []uxml.Cue{
			textCue(1, "00:00:05.00", "00:00:06.00", "later"),
			// empty cue is dropped before its broken timing is looked at
			textCue(2, "garbage", "garbage", "  "),
			textCue(3, "00:00:01.12", "00:00:03.24", "earlier"),
		},
	}

	sub, err := buildSubtitle(doc, timecode.Normalizer{Rate: doc.FrameRate}, uxml.NewExtractor(uxml.ExtractOptions{}), newTestLogger(t))
	if err != nil {
		t.Fatalf("buildSubtitle() error = %v", err)
	}

	want := "1\n00:00:05,000 --> 00:00:06,000\nlater\n\n" +
		"2\n00:00:01,500 --> 00:00:04,000\nearlier\n\n"
	if got := string(sub.Bytes()); got != want {
		t.Errorf("subtitle = %q, want %q", got, want)
	}
}

func TestBuildSubtitle_Errors(t *testing.T) {
	ext := uxml.NewExtractor(uxml.ExtractOptions{})

	tests := []struct {
		name    string
		cue     uxml.Cue
		norm    timecode.Normalizer
		wantErr error
		wantMsg string
	}{
		{"bad begin", textCue(4, "00:00:01", "00:00:02.00", "x"), timecode.Normalizer{Rate: timecode.NewRate(25)}, timecode.ErrFormat, "cue 4 begin"},
		{"bad end", textCue(5, "00:00:01.00", "00:00:02.00.00", "x"), timecode.Normalizer{Rate: timecode.NewRate(25)}, timecode.ErrFormat, "cue 5 end"},
		{"no frame rate", textCue(6, "00:00:01.10", "00:00:02.00", "x"), timecode.Normalizer{}, timecode.ErrNoFrameRate, "cue 6 begin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &uxml.Document{Cues: []uxml.Cue{tt.cue}}
			_, err := buildSubtitle(doc, tt.norm, ext, newTestLogger(t))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := err.Error(); len(got) < len(tt.wantMsg) || got[:len(tt.wantMsg)] != tt.wantMsg {
				t.Errorf("error = %q, want prefix %q", got, tt.wantMsg)
			}
		})
	}
}

func TestBuildSubtitle_InvertedCue(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	doc := &uxml.Document{Cues: []uxml.Cue{textCue(1, "00:00:05,000", "00:00:04,000", "backwards")}}
	sub, err := buildSubtitle(doc, timecode.Normalizer{}, uxml.NewExtractor(uxml.ExtractOptions{}), log)
	if err != nil {
		t.Fatalf("buildSubtitle() error = %v", err)
	}
	if sub.Len() != 1 {
		t.Errorf("inverted cue must still be emitted, have %d records", sub.Len())
	}
	if logs.FilterMessage("Cue ends before it starts").Len() != 1 {
		t.Errorf("expected warning, got %v", logs.All())
	}
}
