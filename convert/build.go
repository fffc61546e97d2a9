package convert

import (
	"fmt"

	"go.uber.org/zap"

	"dsx2srt/srt"
	"dsx2srt/timecode"
	"dsx2srt/uxml"
)

// buildSubtitle converts cues in document order. Cues without text are
// dropped before their timing is looked at and do not take sequence numbers.
// Any timing error aborts the whole document.
func buildSubtitle(doc *uxml.Document, norm timecode.Normalizer, ext *uxml.Extractor, log *zap.Logger) (*srt.Subtitle, error) {
	sub := &srt.Subtitle{}
	for _, cue := range doc.Cues {
		text := ext.Text(cue.Content)
		if len(text) == 0 {
			log.Debug("Skipping cue without text", zap.Int("cue", cue.Index))
			continue
		}

		start, err := norm.Normalize(cue.Begin)
		if err != nil {
			return nil, fmt.Errorf("cue %d begin: %w", cue.Index, err)
		}
		end, err := norm.Normalize(cue.End)
		if err != nil {
			return nil, fmt.Errorf("cue %d end: %w", cue.Index, err)
		}
		if end.TotalMillis() < start.TotalMillis() {
			log.Warn("Cue ends before it starts",
				zap.Int("cue", cue.Index), zap.Stringer("begin", start), zap.Stringer("end", end))
		}
		sub.Add(start, end, text)
	}
	return sub, nil
}
