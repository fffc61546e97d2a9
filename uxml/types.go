// Package uxml reads subtitle interchange documents (UXML timed text, usually
// stored in .dsx files) and renders cue content into annotated subtitle text.
package uxml

import (
	"dsx2srt/timecode"
)

const (
	NamespaceTTML        = "http://www.w3.org/ns/ttml"
	NamespaceTTMLStyling = "http://www.w3.org/ns/ttml#styling"
	NamespaceUXML        = "http://www.sdimedia.com/ns/uxml/5.10/uxml"
)

// NodeKind distinguishes styled text node variants.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeBreak
	NodeItalic
	NodeElement
)

func (k NodeKind) String() string {
	switch k {
	case NodeText:
		return "text"
	case NodeBreak:
		return "break"
	case NodeItalic:
		return "italic"
	case NodeElement:
		return "element"
	default:
		return "unknown"
	}
}

// Node is a piece of cue content. Text nodes carry raw (untrimmed) character
// data, all other kinds carry their content in Children. Break elements are
// normally empty but are not required to be.
type Node struct {
	Kind     NodeKind
	Tag      string
	Text     string
	Children []Node
}

// Cue is a single timed paragraph. Begin and End keep attribute values as
// found in the document, empty when attribute is absent.
type Cue struct {
	Index   int
	Begin   string
	End     string
	Content Node
}

// Document is everything conversion needs from a single source file.
type Document struct {
	FrameRate     timecode.Rate
	FrameRateText string
	Cues          []Cue
}

func (d *Document) HasFrameRate() bool {
	return d.FrameRate.Defined()
}
