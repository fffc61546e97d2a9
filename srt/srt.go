// Package srt produces SubRip subtitle files.
package srt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dsx2srt/timecode"
)

// Record is a single numbered SubRip block.
type Record struct {
	Index int
	Start timecode.Timecode
	End   timecode.Timecode
	Text  string
}

// Subtitle accumulates records in order of addition. Sequence numbers are
// assigned densely starting from 1.
type Subtitle struct {
	records []Record
}

// Add appends new record unless text is empty after trimming. Reports whether
// record was added.
func (s *Subtitle) Add(start, end timecode.Timecode, text string) bool {
	if len(strings.TrimSpace(text)) == 0 {
		return false
	}
	s.records = append(s.records, Record{
		Index: len(s.records) + 1,
		Start: start,
		End:   end,
		Text:  text,
	})
	return true
}

func (s *Subtitle) Len() int {
	return len(s.records)
}

func (s *Subtitle) Records() []Record {
	return s.records
}

// WriteTo writes all records. Subtitle without records produces no output.
func (s *Subtitle) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, r := range s.records {
		n, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", r.Index, r.Start, r.End, r.Text)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// Bytes renders the whole subtitle in memory.
func (s *Subtitle) Bytes() []byte {
	var buf bytes.Buffer
	// writing to bytes.Buffer never fails
	_, _ = s.WriteTo(&buf)
	return buf.Bytes()
}

// WriteFile atomically replaces file at path with rendered subtitle: data is
// written to a temporary file in the same directory which is then renamed.
// Failed write leaves nothing behind.
func (s *Subtitle) WriteFile(path string) (err error) {
	data := s.Bytes()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("unable to write subtitles: %w", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("unable to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to close temporary file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to move subtitles into place: %w", err)
	}
	return nil
}
