package gloo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gloo/cache"
)

// Library resolves shader source designators. A designator is either
// inline GLSL code or the name of a file found on the library's search
// paths. File contents are cached so repeated loads of the same
// template hit memory.
type Library struct {
	paths []string
	cache *cache.ShardedCache[string, string]
}

// NewLibrary creates a library searching the given directories, in
// order. With no paths only inline code and absolute or cwd-relative
// file names resolve.
func NewLibrary(paths ...string) *Library {
	return &Library{
		paths: append([]string(nil), paths...),
		cache: cache.NewSharded[string, string](cache.DefaultCapacity, cache.StringHasher),
	}
}

// DefaultLibrary is used by shaders built without WithLibrary.
var DefaultLibrary = NewLibrary()

// LooksLikeCode reports whether the designator is inline GLSL rather
// than a file name. Anything containing a newline or a brace cannot be
// a sensible file name.
func LooksLikeCode(designator string) bool {
	return strings.ContainsAny(designator, "{\n")
}

// Resolve turns a designator into shader source. It returns the source
// text and an origin label used in logs: "<string>" for inline code,
// the base file name for loaded files.
func (l *Library) Resolve(designator string) (source, origin string, err error) {
	if LooksLikeCode(designator) {
		return designator, "<string>", nil
	}
	src, path, err := l.load(designator)
	if err != nil {
		return "", "", err
	}
	return src, filepath.Base(path), nil
}

// Include resolves an include directive name to its source text. It is
// the resolver handed to the preprocessor.
func (l *Library) Include(name string) (string, error) {
	src, _, err := l.load(name)
	return src, err
}

// load reads a file by name, consulting the search paths and the cache.
func (l *Library) load(name string) (source, path string, err error) {
	path, err = l.find(name)
	if err != nil {
		return "", "", err
	}
	if src, ok := l.cache.Get(path); ok {
		return src, path, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("gloo: reading shader %q: %w", name, err)
	}
	src := string(data)
	l.cache.Set(path, src)
	return src, path, nil
}

// find locates name on the search paths. Absolute paths and names that
// resolve relative to the working directory are accepted as-is.
func (l *Library) find(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("gloo: shader %q not found: %w", name, err)
		}
		return name, nil
	}
	for _, dir := range l.paths {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("gloo: shader %q not found on search paths %v", name, l.paths)
}
