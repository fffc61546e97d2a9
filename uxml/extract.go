package uxml

import (
	"strings"
)

const (
	DefaultItalicOpen  = "<i>"
	DefaultItalicClose = "</i>"
)

// ExtractOptions controls subtitle text rendering.
type ExtractOptions struct {
	ItalicOpen  string
	ItalicClose string
	// DuplicateItalicBreaks emits an additional line break in front of the
	// italic run for every break which is a direct child of the italic span.
	// Older conversion scripts produced such output, off by default.
	DuplicateItalicBreaks bool
}

// Extractor renders cue content into flat subtitle text with italic markers
// and forced line breaks.
type Extractor struct {
	opts ExtractOptions
}

func NewExtractor(opts ExtractOptions) *Extractor {
	if len(opts.ItalicOpen) == 0 && len(opts.ItalicClose) == 0 {
		opts.ItalicOpen, opts.ItalicClose = DefaultItalicOpen, DefaultItalicClose
	}
	return &Extractor{opts: opts}
}

// Text returns formatted text of the node. Result of every element level is
// trimmed, so is the final string. Empty element produces empty string.
func (x *Extractor) Text(root Node) string {
	return x.render(root, false)
}

// render produces markers only for the outermost italic run.
func (x *Extractor) render(n Node, inItalic bool) string {
	var sb strings.Builder
	for _, child := range n.Children {
		switch child.Kind {
		case NodeText:
			sb.WriteString(strings.TrimSpace(child.Text))
		case NodeBreak:
			sb.WriteByte('\n')
			sb.WriteString(x.render(child, inItalic))
		case NodeItalic:
			if x.opts.DuplicateItalicBreaks {
				for _, ch := range child.Children {
					if ch.Kind == NodeBreak {
						sb.WriteByte('\n')
					}
				}
			}
			inner := x.render(child, true)
			if inItalic {
				sb.WriteString(inner)
				continue
			}
			sb.WriteString(x.opts.ItalicOpen)
			sb.WriteString(inner)
			sb.WriteString(x.opts.ItalicClose)
		default:
			sb.WriteString(x.render(child, inItalic))
		}
	}
	return strings.TrimSpace(sb.String())
}
