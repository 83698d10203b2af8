package glsl

import (
	"reflect"
	"testing"

	"github.com/gogpu/gloo/driver"
)

func TestUniforms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Declaration
	}{
		{
			name: "scalar and vector",
			src:  "uniform float u_time;\nuniform vec3 u_light;",
			want: []Declaration{
				{Name: "u_time", Type: driver.Float},
				{Name: "u_light", Type: driver.FloatVec3},
			},
		},
		{
			name: "comma separated list",
			src:  "uniform vec2 u_a, u_b,\n    u_c;",
			want: []Declaration{
				{Name: "u_a", Type: driver.FloatVec2},
				{Name: "u_b", Type: driver.FloatVec2},
				{Name: "u_c", Type: driver.FloatVec2},
			},
		},
		{
			name: "array expands per element",
			src:  "uniform vec4 u_color[3];",
			want: []Declaration{
				{Name: "u_color[0]", Type: driver.FloatVec4},
				{Name: "u_color[1]", Type: driver.FloatVec4},
				{Name: "u_color[2]", Type: driver.FloatVec4},
			},
		},
		{
			name: "sampler",
			src:  "uniform sampler2D u_texture;",
			want: []Declaration{{Name: "u_texture", Type: driver.Sampler2D}},
		},
		{
			name: "commented declaration ignored",
			src:  "// uniform float u_gone;\nuniform int u_kept;",
			want: []Declaration{{Name: "u_kept", Type: driver.Int}},
		},
		{
			name: "unknown type skipped",
			src:  "uniform mystruct u_thing;\nuniform mat4 u_mvp;",
			want: []Declaration{{Name: "u_mvp", Type: driver.FloatMat4}},
		},
		{
			name: "none",
			src:  "void main() {}",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Uniforms(tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Uniforms = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	src := `
attribute vec2 a_position;
attribute vec3 a_color, a_normal;
uniform float u_not_an_attribute;
`
	want := []Declaration{
		{Name: "a_position", Type: driver.FloatVec2},
		{Name: "a_color", Type: driver.FloatVec3},
		{Name: "a_normal", Type: driver.FloatVec3},
	}
	got := Attributes(src)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Attributes = %v, want %v", got, want)
	}
}

func TestTypeFromGLSL(t *testing.T) {
	if typ, ok := TypeFromGLSL("bvec3"); !ok || typ != driver.BoolVec3 {
		t.Errorf("bvec3 = %v, %v", typ, ok)
	}
	if _, ok := TypeFromGLSL("mystruct"); ok {
		t.Error("unknown type resolved")
	}
}
