package config

import (
	"os"
	"strings"
)

const badFileName = "_bad_file_name_"

// CleanFileName drops characters which could not be used in a file name on
// current platform. Leading dots are removed so result is never hidden.
func CleanFileName(in string) string {
	forbidden := string(os.PathSeparator) + string(os.PathListSeparator) + forbiddenNameChars
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(forbidden, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimSpace(strings.TrimLeft(out, "."))
	if len(out) == 0 {
		return badFileName
	}
	return out
}
