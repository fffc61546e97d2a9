package uxml

import (
	"fmt"

	"dsx2srt/utils/debug"
)

// String returns readable tree of the parsed document. It exists solely for
// debug reports and manual inspection.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}

	tw := debug.NewTreeWriter()
	if d.HasFrameRate() {
		tw.Line(0, "Frame rate: %q (factor %s)", d.FrameRateText, d.FrameRate)
	} else {
		tw.Line(0, "Frame rate: not declared")
	}
	tw.Line(0, "Cues: %d", len(d.Cues))
	for _, cue := range d.Cues {
		tw.Fields(1, fmt.Sprintf("Cue[%d]", cue.Index), "begin", cue.Begin, "end", cue.End)
		dumpNodes(tw, 2, cue.Content.Children)
	}
	return tw.String()
}

func dumpNodes(tw *debug.TreeWriter, depth int, nodes []Node) {
	for _, n := range nodes {
		if n.Kind == NodeText {
			tw.Text(depth, n.Kind.String(), n.Text)
			continue
		}
		tw.Line(depth, "%s <%s>", n.Kind, n.Tag)
		dumpNodes(tw, depth+1, n.Children)
	}
}
