package applescript

import (
	"os"
	"strings"
)

// evalFlag tells osascript to treat the next argument as one script line.
const evalFlag = "-e"

// scriptExtensions are the suffixes that mark Text input as a file reference.
var scriptExtensions = []string{".scpt", ".applescript"}

// Script is the input to a single invocation. The zero value is an empty
// script, which osascript rejects at run time.
type Script struct {
	text    string
	lines   []string
	isLines bool
	isFile  bool
}

// Text returns a script from a block of source. Source ending in .scpt or
// .applescript is treated as a path to a script file.
func Text(src string) Script {
	return Script{text: src}
}

// Lines returns a script from an ordered list of source lines.
func Lines(lines ...string) Script {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return Script{lines: cp, isLines: true}
}

// File returns a script that references a file on disk, whatever its extension.
func File(path string) Script {
	return Script{text: path, isFile: true}
}

// IsFile reports whether the script resolves to a file reference.
func (s Script) IsFile() bool {
	return s.isFile || (!s.isLines && hasScriptExtension(s.text))
}

// String returns a short label for logs and reports.
func (s Script) String() string {
	if s.IsFile() {
		return s.text
	}
	lines := s.sourceLines()
	switch len(lines) {
	case 0:
		return "<empty>"
	case 1:
		return lines[0]
	default:
		return lines[0] + " …"
	}
}

// Tokens returns the arguments osascript needs to evaluate the script. A file
// reference becomes a single path token; anything else becomes one "-e"
// pair per line with backslashes doubled. Double quotes are left alone.
func (s Script) Tokens() ([]string, error) {
	if s.IsFile() {
		if _, err := os.Stat(s.text); err != nil {
			return nil, &ScriptNotFoundError{Path: s.text, Err: err}
		}
		return []string{s.text}, nil
	}

	lines := s.sourceLines()
	tokens := make([]string, 0, 2*len(lines))
	for _, line := range lines {
		tokens = append(tokens, evalFlag, escapeLine(line))
	}
	return tokens, nil
}

func (s Script) sourceLines() []string {
	if s.isLines {
		return s.lines
	}
	if s.text == "" {
		return nil
	}
	return strings.Split(s.text, "\n")
}

func escapeLine(line string) string {
	return strings.ReplaceAll(line, `\`, `\\`)
}

func hasScriptExtension(src string) bool {
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(src, ext) {
			return true
		}
	}
	return false
}
