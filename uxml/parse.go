package uxml

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"dsx2srt/timecode"
)

// Parse reads the whole document and builds its typed representation. Only
// TTML paragraphs and frame rate declaration are looked at, everything else
// is ignored.
func Parse(r io.Reader, log *zap.Logger) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charsetReader,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read XML: %w", err)
	}
	return ParseXML(doc, log)
}

// charsetReader handles encodings declared by XML prolog. Unicode input is
// expected to be transcoded to UTF-8 already (see BOM handling by the caller),
// so its declaration is ignored.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(label)), "utf") {
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

// ParseXML walks etree DOM and collects cues in document order.
func ParseXML(doc *etree.Document, log *zap.Logger) (*Document, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("document has no root element")
	}

	res := &Document{}

	if el := findFrameRate(root); el != nil {
		res.FrameRateText = el.Text()
		rate, err := timecode.ParseRate(res.FrameRateText)
		if err != nil {
			return nil, err
		}
		res.FrameRate = rate
		log.Debug("Frame rate declared", zap.String("value", res.FrameRateText), zap.Stringer("factor", rate))
	}

	// descendants only, root itself is never a cue
	for _, child := range root.ChildElements() {
		collectCues(child, res)
	}
	return res, nil
}

func collectCues(el *etree.Element, res *Document) {
	if isParagraph(el) {
		res.Cues = append(res.Cues, Cue{
			Index:   len(res.Cues) + 1,
			Begin:   el.SelectAttrValue("begin", ""),
			End:     el.SelectAttrValue("end", ""),
			Content: Node{Kind: NodeElement, Tag: el.Tag, Children: classifyContent(el)},
		})
	}
	// nested paragraphs are cues too
	for _, child := range el.ChildElements() {
		collectCues(child, res)
	}
}

func isParagraph(el *etree.Element) bool {
	return el.Tag == "p" && el.NamespaceURI() == NamespaceTTML
}

func findFrameRate(root *etree.Element) *etree.Element {
	for _, child := range root.ChildElements() {
		if child.Tag == "frameRate" && isVendorNamespace(child.NamespaceURI()) {
			return child
		}
		if el := findFrameRate(child); el != nil {
			return el
		}
	}
	return nil
}

func isVendorNamespace(uri string) bool {
	return uri == NamespaceUXML || strings.HasSuffix(uri, "/uxml")
}

// classifyContent converts mixed content of the element. Adjacent character
// data tokens (split by comments or processing instructions) are merged.
func classifyContent(el *etree.Element) []Node {
	var nodes []Node
	for _, token := range el.Child {
		switch t := token.(type) {
		case *etree.CharData:
			if last := len(nodes) - 1; last >= 0 && nodes[last].Kind == NodeText {
				nodes[last].Text += t.Data
				continue
			}
			nodes = append(nodes, Node{Kind: NodeText, Text: t.Data})
		case *etree.Element:
			nodes = append(nodes, classify(t))
		}
	}
	return nodes
}

// classify decides node kind by local tag name, prefix is never part of
// etree Tag.
func classify(el *etree.Element) Node {
	n := Node{Kind: NodeElement, Tag: el.Tag}
	tag := strings.ToLower(el.Tag)
	switch {
	case strings.Contains(tag, "br"):
		n.Kind = NodeBreak
	case strings.Contains(tag, "span") && isItalic(el):
		n.Kind = NodeItalic
	}
	n.Children = classifyContent(el)
	return n
}

func isItalic(el *etree.Element) bool {
	for _, attr := range el.Attr {
		if attr.Key == "fontStyle" && strings.TrimSpace(attr.Value) == "italic" {
			return true
		}
	}
	return false
}
