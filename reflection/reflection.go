// Package reflection builds the optional shape payload attached to class
// records when dynasty is compiled with the dynasty_reflection build tag.
package reflection

import (
	"reflect"
	"strings"
)

// Data describes the shape of a class type.
type Data struct {
	Name    string
	PkgPath string
	Kind    reflect.Kind
	Size    uintptr
	Fields  []Field
}

// Field describes one struct field, in declaration order.
type Field struct {
	Name     string
	Type     string
	Offset   uintptr
	Index    int
	Exported bool
	Embedded bool
	Tag      reflect.StructTag
}

// Of builds the payload for t. Pointer types are dereferenced. Returns nil
// for a nil type.
func Of(t reflect.Type) *Data {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	d := &Data{
		Name:    t.Name(),
		PkgPath: t.PkgPath(),
		Kind:    t.Kind(),
		Size:    t.Size(),
	}
	if t.Kind() != reflect.Struct {
		return d
	}

	d.Fields = make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		d.Fields = append(d.Fields, Field{
			Name:     sf.Name,
			Type:     sf.Type.String(),
			Offset:   sf.Offset,
			Index:    i,
			Exported: sf.IsExported(),
			Embedded: sf.Anonymous,
			Tag:      sf.Tag,
		})
	}
	return d
}

// Field returns the field with the given name.
func (d *Data) Field(name string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns field names in declaration order.
func (d *Data) FieldNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// QualifiedName returns "pkgpath.Name", or just the name for predeclared
// and unnamed types.
func (d *Data) QualifiedName() string {
	if d == nil {
		return ""
	}
	if d.PkgPath == "" {
		return d.Name
	}
	return d.PkgPath + "." + d.Name
}

// String renders a one-line summary, e.g. "Dog{base zoo.Animal, Breed string}".
// Field types are package-qualified, the type name itself is not.
func (d *Data) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.Kind != reflect.Struct {
		return d.Name + " (" + d.Kind.String() + ")"
	}
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteString("{")
	for i, f := range d.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(" ")
		sb.WriteString(f.Type)
	}
	sb.WriteString("}")
	return sb.String()
}
