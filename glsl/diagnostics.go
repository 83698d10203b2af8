package glsl

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Diagnostic is one compiler message tied to a source line.
type Diagnostic struct {
	// Line is the 1-based source line the compiler reported.
	Line int

	// Message is the compiler message text for that line.
	Message string
}

// ErrUnknownLogFormat is returned when a compile log matches none of the
// known vendor formats. Callers must surface the raw log text.
var ErrUnknownLogFormat = errors.New("glsl: unrecognized compile log format")

// Vendor compile-log formats. Each driver family has its own line-number
// idiom; the three patterns are mutually exclusive on any given log.
var logFormats = []*regexp.Regexp{
	// NVIDIA: 0(7): error C1008: undefined variable "MV"
	regexp.MustCompile(`(?m)^\s*\d+\((\d+)\)\s*:\s*(.*)$`),
	// ATI / Intel: ERROR: 0:131: '{' : syntax error parse error
	regexp.MustCompile(`(?m)^\s*ERROR:\s*\d+:(\d+):\s*(.*)$`),
	// Nouveau: 0:28(16): error: syntax error, unexpected ')'
	regexp.MustCompile(`(?m)^\s*\d+:(\d+)\(\d+\):\s*(.*)$`),
}

// ParseCompileLog parses a shader compiler log into per-line diagnostics,
// sorted by line number. The first vendor format that matches any line of
// the log is used for the whole log. A log matching no known format yields
// ErrUnknownLogFormat; the caller is expected to propagate the raw text
// rather than discard it.
func ParseCompileLog(log string) ([]Diagnostic, error) {
	for _, re := range logFormats {
		matches := re.FindAllStringSubmatch(log, -1)
		if len(matches) == 0 {
			continue
		}
		diags := make([]Diagnostic, 0, len(matches))
		for _, m := range matches {
			line, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			diags = append(diags, Diagnostic{Line: line, Message: m[2]})
		}
		sort.SliceStable(diags, func(i, j int) bool {
			return diags[i].Line < diags[j].Line
		})
		return diags, nil
	}
	return nil, fmt.Errorf("%w:\n%s", ErrUnknownLogFormat, log)
}
