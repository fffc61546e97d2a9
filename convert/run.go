package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"dsx2srt/archive"
	"dsx2srt/state"
	"dsx2srt/uxml"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Recursive, env.SkipExisting, env.Strict = cmd.Bool("recursive"), cmd.Bool("skip-existing"), cmd.Bool("strict")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	sum := &Summary{}
	err = process(ctx, src, dst, sum, log)

	// batch is always acknowledged, even when interrupted
	NewLogNotifier(log).Notify(sum)

	if err != nil {
		return err
	}
	if env.Strict {
		if err := sum.Err(); err != nil {
			return fmt.Errorf("%d file(s) failed: %w", sum.Count(StatusFailed), err)
		}
	}
	return nil
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly. Per file outcomes are collected in sum, returned error means
// the batch itself could not be done.
func process(ctx context.Context, src, dst string, sum *Summary, log *zap.Logger) error {
	ext := state.EnvFromContext(ctx).Cfg.Document.Extension

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := os.MkdirAll(dst, 0755); err != nil {
				return fmt.Errorf("unable to create destination directory: %w", err)
			}
			if err := processDir(ctx, head, dst, sum, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), dst, sum, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		doc, enc, err := isDocumentFile(head, ext)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if doc && len(tail) == 0 {
			// document cannot have tail
			sum.Add(processFile(ctx, head, filepath.Base(head), enc, dst, log))
			break
		}
		return fmt.Errorf("input was not recognized as timed text document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// listDocuments returns paths of files with the expected extension under dir
// (relative to dir) in natural order. Subdirectories are only looked at when
// recursive is set.
func listDocuments(dir, ext string, recursive bool, log *zap.Logger) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !hasExtension(path, ext) {
			log.Debug("Skipping file, extension does not match", zap.String("file", path))
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(found))
	return found, nil
}

// processDir converts all documents found in directory.
func processDir(ctx context.Context, dir, dst string, sum *Summary, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	names, err := listDocuments(dir, env.Cfg.Document.Extension, env.Recursive, log)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, name)
		_, enc, err := isDocumentFile(path, env.Cfg.Document.Extension)
		if err != nil {
			sum.Add(failed(name, err))
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			continue
		}
		sum.Add(processFile(ctx, path, name, enc, dst, log))
	}
	return nil
}

func processFile(ctx context.Context, path, src string, enc srcEncoding, dst string, log *zap.Logger) Result {
	file, err := os.Open(path)
	if err != nil {
		log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		return failed(src, err)
	}
	defer file.Close()

	return processDocument(ctx, selectReader(file, enc), src, dst, log)
}

// processArchive walks all documents inside archive under "pathIn" and
// converts them.
func processArchive(ctx context.Context, path, pathIn, dst string, sum *Summary, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	count := 0
	w := archive.Walker{Prefix: pathIn, Extension: env.Cfg.Document.Extension, CodePage: env.CodePage}
	err := w.Walk(path, func(archive, name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++

		_, enc, err := isDocumentInArchive(f, env.Cfg.Document.Extension)
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", archive), zap.String("file", name), zap.Error(err))
			sum.Add(failed(name, err))
			return nil
		}

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", archive), zap.String("file", name), zap.Error(err))
			sum.Add(failed(name, err))
			return nil
		}
		defer r.Close()

		sum.Add(processDocument(ctx, selectReader(r, enc), filepath.FromSlash(name), dst, log))
		return nil
	})
	if err == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
	}
	return err
}

func newRefID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// processDocument converts single document. "src" is the source path relative
// to the input (just base file name when file was specified directly), "dst"
// is the destination directory. Output is written only when whole document
// was converted successfully.
func processDocument(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) (res Result) {
	env := state.EnvFromContext(ctx)

	res = Result{Source: src, RefID: newRefID()}

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// one bad document should not stop the batch
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", src), zap.ByteString("stack", debug.Stack()))
			res.Status, res.Err = StatusFailed, fmt.Errorf("conversion panic: %v", r)
			return
		}
		switch res.Status {
		case StatusFailed:
			log.Error("Unable to convert file", zap.String("file", src), zap.String("ref_id", res.RefID), zap.Error(res.Err))
		case StatusSkipped:
			log.Info("Conversion skipped, output exists", zap.String("to", res.Output))
		default:
			log.Info("Conversion completed",
				zap.Duration("elapsed", time.Since(start)), zap.String("to", res.Output), zap.Int("cues", res.Cues), zap.String("ref_id", res.RefID))
		}
	}(time.Now())

	fail := func(err error) Result {
		res.Status, res.Err = StatusFailed, err
		return res
	}

	doc, err := uxml.Parse(r, log)
	if err != nil {
		return fail(fmt.Errorf("unable to parse source (%s): %w", src, err))
	}
	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("tree-%s.txt", res.RefID), []byte(doc.String()))
	}
	if !doc.HasFrameRate() {
		log.Warn("Frame rate is not declared", zap.String("file", src), zap.Stringer("policy", env.Cfg.Document.MissingFrameRate))
	}

	sub, err := buildSubtitle(doc, env.Normalizer(doc.FrameRate), env.Extractor(), log)
	if err != nil {
		return fail(fmt.Errorf("unable to convert source (%s): %w", src, err))
	}
	res.Cues = sub.Len()

	res.Output = buildOutputPath(newValues(doc, src, res.RefID, sub.Len()), src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(res.Output); err == nil {
		if env.SkipExisting {
			res.Status = StatusSkipped
			return res
		}
		log.Warn("Overwriting existing file", zap.String("file", res.Output))
	} else if !os.IsNotExist(err) {
		return fail(err)
	} else if err := os.MkdirAll(filepath.Dir(res.Output), 0755); err != nil {
		return fail(fmt.Errorf("unable to create output directory: %w", err))
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := sub.WriteFile(res.Output); err != nil {
		return fail(fmt.Errorf("unable to write output (%s): %w", res.Output, err))
	}

	// Store conversion result for debugging
	env.Rpt.Store(fmt.Sprintf("result-%s.srt", res.RefID), res.Output)

	res.Status = StatusConverted
	return res
}
