package glsl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// IncludeResolver maps an include name to its source text.
// It is invoked for every #include directive found during preprocessing.
type IncludeResolver func(name string) (string, error)

// ErrIncludeCycle is returned when #include directives form a cycle.
var ErrIncludeCycle = errors.New("glsl: include cycle")

// maxIncludeDepth bounds include nesting independently of cycle detection.
const maxIncludeDepth = 32

var (
	includeRe = regexp.MustCompile(`(?m)^\s*#\s*include\s+["<]([^">]+)[">]\s*$`)
	versionRe = regexp.MustCompile(`(?m)^\s*#\s*version\s+(\d+)[^\n]*$`)
)

// Preprocess normalizes raw shader template text: comments inside #include
// lines cannot hide directives (masking is applied for directive discovery),
// every #include is expanded recursively through resolve, and #version
// pragmas are stripped out and reported separately so the compiling shader
// can stamp its own version requirement exactly once.
//
// resolve may be nil, in which case any #include directive is an error.
// The returned version is the last pragma seen, or "" if none.
func Preprocess(src string, resolve IncludeResolver) (out, version string, err error) {
	out, version, err = expand(src, resolve, nil, 0)
	return out, version, err
}

func expand(src string, resolve IncludeResolver, active []string, depth int) (string, string, error) {
	if depth > maxIncludeDepth {
		return "", "", fmt.Errorf("%w: nesting deeper than %d", ErrIncludeCycle, maxIncludeDepth)
	}

	version := ""
	masked := MaskComments(src)

	// Strip #version pragmas, remembering the last one.
	for _, m := range versionRe.FindAllStringSubmatchIndex(masked, -1) {
		version = strings.TrimSpace(src[m[2]:m[3]])
	}
	src = removeSpans(src, versionRe.FindAllStringIndex(masked, -1))
	masked = MaskComments(src)

	// Expand includes.
	matches := includeRe.FindAllStringSubmatchIndex(masked, -1)
	if len(matches) == 0 {
		return src, version, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := src[m[2]:m[3]]
		if resolve == nil {
			return "", "", fmt.Errorf("glsl: no resolver for #include %q", name)
		}
		for _, seen := range active {
			if seen == name {
				return "", "", fmt.Errorf("%w: %q includes itself", ErrIncludeCycle, name)
			}
		}
		body, err := resolve(name)
		if err != nil {
			return "", "", fmt.Errorf("glsl: resolving #include %q: %w", name, err)
		}
		expanded, v, err := expand(body, resolve, append(active, name), depth+1)
		if err != nil {
			return "", "", err
		}
		if v != "" && version == "" {
			version = v
		}
		b.WriteString(src[last:m[0]])
		b.WriteString(expanded)
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String(), version, nil
}

// removeSpans deletes the given [start,end) spans from src. Spans must be
// sorted and non-overlapping, as produced by FindAllStringIndex.
func removeSpans(src string, spans [][]int) string {
	if len(spans) == 0 {
		return src
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(src[last:sp[0]])
		last = sp[1]
	}
	b.WriteString(src[last:])
	return b.String()
}
