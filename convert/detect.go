package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"dsx2srt/uxml"
)

// srcEncoding is Unicode encoding of the input announced by BOM.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUnknown:
		return "unknown"
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	}
	return fmt.Sprintf("srcEncoding(%d)", int(e))
}

// enough to see root element with its namespace declarations
const headerSize = 8192

var timedTextType = filetype.NewType("dsx", "application/ttml+xml")

func init() {
	filetype.AddMatcher(timedTextType, isTimedText)
}

// isTimedText is filetype matcher: buffer is a beginning of XML document
// which declares TTML namespace.
func isTimedText(buf []byte) bool {
	text := decodeHeader(buf, detectUTF(buf))
	return bytes.HasPrefix(bytes.TrimSpace(text), []byte("<")) && bytes.Contains(text, []byte(uxml.NamespaceTTML))
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks at BOM. UTF-32 checks go first since UTF-32LE BOM starts
// with UTF-16LE one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

func decoderFor(enc srcEncoding) encoding.Encoding {
	switch enc {
	case encUTF8:
		return unicode.UTF8BOM
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	}
	return nil
}

// decodeHeader converts beginning of the document to UTF-8 for sniffing.
// Partial sequence at the end of the buffer does not matter here.
func decodeHeader(buf []byte, enc srcEncoding) []byte {
	e := decoderFor(enc)
	if e == nil {
		return buf
	}
	out, _, _ := transform.Bytes(e.NewDecoder(), buf)
	return out
}

// selectReader returns reader producing UTF-8 with BOM removed.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	if enc == encUnknown {
		return r
	}
	e := decoderFor(enc)
	if e == nil {
		panic(fmt.Sprintf("unexpected source encoding %d", enc))
	}
	return transform.NewReader(r, e.NewDecoder())
}

func readHeader(r io.Reader) ([]byte, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func hasExtension(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// isArchiveFile checks if file is zip archive by extension and content.
func isArchiveFile(path string) (bool, error) {
	if !hasExtension(path, ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	hdr, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(hdr, "zip"), nil
}

// probe returns BOM encoding of the stream and whether its content looks like
// timed text document.
func probe(r io.Reader) (srcEncoding, bool, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return encUnknown, false, err
	}
	return detectUTF(hdr), filetype.Is(hdr, timedTextType.Extension), nil
}

// isDocumentFile checks if file should be converted. Files with expected
// extension are always accepted (broken ones will fail parsing and be
// reported), others only when content is recognized.
func isDocumentFile(path, ext string) (bool, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	enc, sniffed, err := probe(f)
	if err != nil {
		return false, encUnknown, err
	}
	return sniffed || hasExtension(path, ext), enc, nil
}

// isDocumentInArchive is isDocumentFile for archive entries.
func isDocumentInArchive(f *zip.File, ext string) (bool, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	enc, sniffed, err := probe(r)
	if err != nil {
		return false, encUnknown, err
	}
	return sniffed || hasExtension(f.Name, ext), enc, nil
}
