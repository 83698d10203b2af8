package gloo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/gloo/driver"
)

func TestUniform_SetData(t *testing.T) {
	tests := []struct {
		name    string
		typ     driver.DataType
		data    any
		wantErr bool
	}{
		{"float from float64", driver.Float, 0.5, false},
		{"float from int", driver.Float, 2, false},
		{"vec3 from slice", driver.FloatVec3, []float32{1, 2, 3}, false},
		{"vec3 from float64 slice", driver.FloatVec3, []float64{1, 2, 3}, false},
		{"vec3 from mgl32", driver.FloatVec3, mgl32.Vec3{1, 2, 3}, false},
		{"mat4 from mgl32", driver.FloatMat4, mgl32.Ident4(), false},
		{"vec3 wrong count", driver.FloatVec3, []float32{1, 2}, true},
		{"float from string", driver.Float, "nope", true},
		{"int from int", driver.Int, 7, false},
		{"bool from bool", driver.Bool, true, false},
		{"ivec2 from slice", driver.IntVec2, []int{4, 5}, false},
		{"ivec2 wrong count", driver.IntVec2, []int32{1}, true},
		{"int from float", driver.Int, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUniform("u_test", tt.typ)
			err := u.SetData(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetData(%v) err = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if !tt.wantErr && u.Data() == nil {
				t.Error("data not stored")
			}
		})
	}
}

// unitBinder records the texture unit it was bound to.
type unitBinder struct {
	unit int
}

func (b *unitBinder) Bind(unit int) error {
	b.unit = unit
	return nil
}

func TestUniform_Sampler(t *testing.T) {
	u := newUniform("u_texture", driver.Sampler2D)
	u.unit = 2

	binder := &unitBinder{unit: -1}
	if err := u.SetData(binder); err != nil {
		t.Fatalf("SetData(Binder): %v", err)
	}

	fd := newFakeDriver()
	u.active = true
	u.location = 5
	if err := u.activate(fd); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if binder.unit != 2 {
		t.Errorf("binder bound to unit %d, want 2", binder.unit)
	}
	want := []string{"ActiveTexture(2)", "UniformInts(5, [2])"}
	for _, w := range want {
		found := false
		for _, c := range fd.calls {
			if c == w {
				found = true
			}
		}
		if !found {
			t.Errorf("missing call %q in %v", w, fd.calls)
		}
	}
}

func TestUniform_SamplerUnitOverride(t *testing.T) {
	u := newUniform("u_texture", driver.Sampler2D)
	if err := u.SetData(7); err != nil {
		t.Fatalf("SetData(int): %v", err)
	}
	if u.TextureUnit() != 7 {
		t.Errorf("unit = %d, want 7", u.TextureUnit())
	}

	if err := u.SetData("not a binder"); err == nil {
		t.Error("expected error for non-Binder sampler data")
	}
}

func TestAttribute_SetData(t *testing.T) {
	a := newAttribute("a_position", driver.FloatVec2)

	if err := a.SetData([]float32{0, 0, 1, 0, 0, 1}); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if !a.Bound() {
		t.Error("attribute not marked bound")
	}
	if a.Len() != 3 {
		t.Errorf("Len = %d, want 3 vertices", a.Len())
	}

	// Length must be a whole number of components.
	if err := a.SetData([]float32{0, 0, 1}); err == nil {
		t.Error("expected error for ragged float data")
	}
	if err := a.SetData(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestAttribute_SetColumn(t *testing.T) {
	buf, err := NewVertexBuffer(2,
		Field{Name: "a_position", Type: driver.FloatVec2},
		Field{Name: "a_color", Type: driver.FloatVec3},
	)
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	col, ok := buf.Column("a_color")
	if !ok {
		t.Fatal("column a_color not found")
	}

	a := newAttribute("a_color", driver.FloatVec3)
	if err := a.SetData(col); err != nil {
		t.Fatalf("SetData(Column): %v", err)
	}
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}
	if a.Data().Buffer != buf {
		t.Error("column points at wrong buffer")
	}
}
