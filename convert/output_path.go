package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"dsx2srt/config"
	"dsx2srt/state"
)

const outputExt = ".srt"

// buildOutputPath returns output file path for the source document. Source
// directory structure relative to the input is kept. Either default naming
// scheme (source name with new extension) or user-defined template is used,
// path segments are cleaned and, if requested, transliterated.
func buildOutputPath(values *Values, src, dst string, env *state.LocalEnv) string {
	outDir := filepath.Join(dst, filepath.Dir(src))
	defaultFile := cleanPathSegment(values.Name, env) + outputExt

	if len(env.Cfg.Document.OutputNameTemplate) == 0 {
		return filepath.Join(outDir, defaultFile)
	}

	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return filepath.Join(outDir, defaultFile)
	}
	if len(strings.TrimSpace(expanded)) == 0 {
		return filepath.Join(outDir, defaultFile)
	}
	return makeFullPath(outDir, filepath.FromSlash(expanded), env)
}

// makeFullPath takes an expanded template name (which may contain path
// separators for subdirectories) and assembles it into a full output path.
func makeFullPath(outDir, expandedName string, env *state.LocalEnv) string {
	segments := splitPathSegments(expandedName)
	if len(segments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+outputExt)
	return filepath.Join(parts...)
}

func splitPathSegments(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); len(tail) != 0; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if len(head) == 0 {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
