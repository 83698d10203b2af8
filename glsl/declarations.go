package glsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gloo/driver"
)

// Declaration is a uniform or attribute declared in shader source.
type Declaration struct {
	Name string
	Type driver.DataType
}

// typeTable maps GLSL type names to driver data types.
var typeTable = map[string]driver.DataType{
	"float": driver.Float,
	"vec2":  driver.FloatVec2,
	"vec3":  driver.FloatVec3,
	"vec4":  driver.FloatVec4,

	"int":   driver.Int,
	"ivec2": driver.IntVec2,
	"ivec3": driver.IntVec3,
	"ivec4": driver.IntVec4,

	"bool":  driver.Bool,
	"bvec2": driver.BoolVec2,
	"bvec3": driver.BoolVec3,
	"bvec4": driver.BoolVec4,

	"mat2": driver.FloatMat2,
	"mat3": driver.FloatMat3,
	"mat4": driver.FloatMat4,

	"sampler1D":   driver.Sampler1D,
	"sampler2D":   driver.Sampler2D,
	"samplerCube": driver.SamplerCube,
}

// TypeFromGLSL returns the driver data type for a GLSL type name.
func TypeFromGLSL(name string) (driver.DataType, bool) {
	t, ok := typeTable[name]
	return t, ok
}

var (
	uniformRe   = regexp.MustCompile(`\buniform\s+(\w+)\s+([\w, \t\[\]\n]+?)\s*;`)
	attributeRe = regexp.MustCompile(`\battribute\s+(\w+)\s+([\w, \t\[\]\n]+?)\s*;`)
	arrayRe     = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

// Uniforms extracts uniform declarations from shader source. Comments are
// masked first, comma-separated declarations are split, and array
// declarations expand into one entry per index ("color[3]" becomes
// color[0], color[1], color[2]). Declarations whose type name is not a
// recognized GLSL type are skipped.
func Uniforms(src string) []Declaration {
	return declarations(src, uniformRe)
}

// Attributes extracts attribute declarations from shader source, with the
// same splitting and array expansion rules as Uniforms.
func Attributes(src string) []Declaration {
	return declarations(src, attributeRe)
}

func declarations(src string, re *regexp.Regexp) []Declaration {
	masked := MaskComments(src)
	var decls []Declaration
	for _, m := range re.FindAllStringSubmatch(masked, -1) {
		typ, ok := typeTable[m[1]]
		if !ok {
			continue
		}
		for _, name := range strings.Split(m[2], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if am := arrayRe.FindStringSubmatch(name); am != nil {
				n, err := strconv.Atoi(am[2])
				if err != nil || n < 1 {
					continue
				}
				for i := 0; i < n; i++ {
					decls = append(decls, Declaration{
						Name: fmt.Sprintf("%s[%d]", am[1], i),
						Type: typ,
					})
				}
				continue
			}
			decls = append(decls, Declaration{Name: name, Type: typ})
		}
	}
	return decls
}
