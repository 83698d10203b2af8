package glsl

import (
	"regexp"
	"strings"
	"sync"
)

// Hook is one occurrence of a template placeholder of the form
// <name>, <name.sub>, <name.sub(args)> or <name.sub!>(args).
type Hook struct {
	// Name is the hook identifier.
	Name string

	// Sub is the dotted sub-path after the name, "" if absent. A trailing
	// "!" on the final segment is kept verbatim; it marks an argument
	// override.
	Sub string

	// Args is the argument text inside the trailing parentheses, "" if
	// absent.
	Args string
}

var (
	hooksRe = regexp.MustCompile(`<(\w+)(?:\.([\w.!]+))?(?:\(([^<>]+)\))?>`)

	// hookTokenRe matches a complete hook token anchored at the start of
	// its input. Used by MaskComments to skip hook tokens atomically.
	hookTokenRe = regexp.MustCompile(`^<\w+(?:\.[\w.!]+)?(?:\([^<>]+\))?>`)
)

// Hooks extracts every hook occurrence from template text. Comments are
// masked first, so hook-like text inside comments is never reported.
// Occurrences are returned in source order; a hook name referenced several
// times appears several times.
func Hooks(src string) []Hook {
	masked := MaskComments(src)
	var hooks []Hook
	for _, m := range hooksRe.FindAllStringSubmatch(masked, -1) {
		hooks = append(hooks, Hook{Name: m[1], Sub: m[2], Args: m[3]})
	}
	return hooks
}

// HookNames returns the set of distinct hook names in src, in first-seen
// order.
func HookNames(src string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, h := range Hooks(src) {
		if !seen[h.Name] {
			seen[h.Name] = true
			names = append(names, h.Name)
		}
	}
	return names
}

var (
	namedHookMu sync.Mutex
	namedHookRe = make(map[string]*regexp.Regexp)
)

// namedHookPattern returns the hook pattern anchored to one hook name.
// Compiled patterns are cached; hook names are identifiers so no quoting
// is needed.
func namedHookPattern(name string) *regexp.Regexp {
	namedHookMu.Lock()
	defer namedHookMu.Unlock()
	if re, ok := namedHookRe[name]; ok {
		return re
	}
	re := regexp.MustCompile(`<(` + name + `)(?:\.([\w.!]+))?(?:\(([^<>]+)\))?>`)
	namedHookRe[name] = re
	return re
}

// ReplaceHooks substitutes every occurrence of the named hook in src with
// the value returned by repl. Matching runs against comment-masked text and
// replacements are spliced into the original, so occurrences inside
// comments are left untouched.
func ReplaceHooks(src, name string, repl func(h Hook) string) string {
	re := namedHookPattern(name)
	masked := MaskComments(src)
	spans := re.FindAllStringSubmatchIndex(masked, -1)
	if len(spans) == 0 {
		return src
	}
	var b strings.Builder
	last := 0
	for _, m := range spans {
		h := Hook{Name: name}
		if m[4] >= 0 {
			h.Sub = masked[m[4]:m[5]]
		}
		if m[6] >= 0 {
			h.Args = masked[m[6]:m[7]]
		}
		b.WriteString(src[last:m[0]])
		b.WriteString(repl(h))
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String()
}
