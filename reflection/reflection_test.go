package reflection

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type animal struct {
	Name string `json:"name"`
	Legs int
}

type dog struct {
	base  animal
	Breed string `json:"breed,omitempty"`
}

func TestOf_Struct(t *testing.T) {
	d := Of(reflect.TypeOf(dog{}))
	require.NotNil(t, d)

	assert.Equal(t, "dog", d.Name)
	assert.Equal(t, "github.com/teranos/dynasty/reflection", d.PkgPath)
	assert.Equal(t, reflect.Struct, d.Kind)
	assert.Equal(t, []string{"base", "Breed"}, d.FieldNames())

	base, ok := d.Field("base")
	require.True(t, ok)
	assert.Equal(t, 0, base.Index)
	assert.Equal(t, uintptr(0), base.Offset)
	assert.False(t, base.Exported)
	assert.Equal(t, "reflection.animal", base.Type)

	breed, ok := d.Field("Breed")
	require.True(t, ok)
	assert.True(t, breed.Exported)
	assert.Equal(t, "breed,omitempty", breed.Tag.Get("json"))
}

func TestOf_PointerIsDereferenced(t *testing.T) {
	assert.Equal(t, Of(reflect.TypeOf(animal{})), Of(reflect.TypeOf(&animal{})))
}

func TestOf_NonStruct(t *testing.T) {
	type kind int
	d := Of(reflect.TypeOf(kind(0)))
	require.NotNil(t, d)
	assert.Empty(t, d.Fields)
	assert.Equal(t, "kind (int)", d.String())
}

func TestOf_Nil(t *testing.T) {
	var d *Data
	assert.Nil(t, Of(nil))
	assert.Equal(t, "<nil>", d.String())
	assert.Empty(t, d.FieldNames())
	assert.Equal(t, "", d.QualifiedName())
	_, ok := d.Field("x")
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "animal{Name string, Legs int}", Of(reflect.TypeOf(animal{})).String())
	assert.Equal(t, "dog{base reflection.animal, Breed string}", Of(reflect.TypeOf(dog{})).String())
	assert.Equal(t, "github.com/teranos/dynasty/reflection.animal", Of(reflect.TypeOf(animal{})).QualifiedName())
}
