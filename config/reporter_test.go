package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReport(t *testing.T) (*Report, string) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "report.zip")
	conf := ReporterConfig{Destination: name}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	return r, name
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer zr.Close()

	content := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		content[f.Name] = string(data)
	}
	return content
}

func TestReport_Content(t *testing.T) {
	r, name := newTestReport(t)

	src := t.TempDir()
	logName := filepath.Join(src, "run.log")
	if err := os.WriteFile(logName, []byte("log line"), 0644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(src, "out")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "a.srt"), []byte("srt"), 0644); err != nil {
		t.Fatal(err)
	}

	data := []byte("tree")
	r.Store("final.log", logName)
	r.Store("output", dir)
	r.Store("missing", filepath.Join(src, "absent"))
	r.StoreData("doc/tree.txt", data)
	data[0] = 'X'

	if r.Name() != name {
		t.Errorf("Name() = %q, want %q", r.Name(), name)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	content := readArchive(t, name)
	if content["final.log"] != "log line" {
		t.Errorf("final.log = %q", content["final.log"])
	}
	if content["output/nested/a.srt"] != "srt" {
		t.Errorf("output/nested/a.srt = %q", content["output/nested/a.srt"])
	}
	if content["doc/tree.txt"] != "tree" {
		t.Errorf("stored data must be copied, got %q", content["doc/tree.txt"])
	}
	if _, ok := content["missing"]; ok {
		t.Error("absent path should be skipped")
	}
	manifest := content["MANIFEST"]
	for _, n := range []string{"final.log", "output", "missing", "doc/tree.txt"} {
		if !strings.Contains(manifest, "\t"+n+"\t") {
			t.Errorf("MANIFEST does not mention %s:\n%s", n, manifest)
		}
	}
}

func TestReport_StoreSamePathTwice(t *testing.T) {
	r, _ := newTestReport(t)
	path, err := filepath.Abs("file.txt")
	if err != nil {
		t.Fatal(err)
	}
	r.Store("entry", path)
	r.Store("entry", path)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestReport_StoreConflictPanics(t *testing.T) {
	r, _ := newTestReport(t)
	defer r.Close()

	r.StoreData("entry", []byte("one"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on overwrite")
		}
	}()
	r.StoreData("entry", []byte("two"))
}

func TestReport_NilReport(t *testing.T) {
	var r *Report
	r.Store("name", "path")
	r.StoreData("name", nil)
	if r.Name() != "" {
		t.Error("nil report should have no name")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReport_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
