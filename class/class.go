// Package class is the runtime half of dynasty: the class record every
// generated type exposes, the capabilities generated code implements, and
// the registry that ties type identities together.
//
// Generated companion files look like:
//
//	var dynastyDogClass = class.Derive[Dog, Animal]("Dog")
//
//	func (*Dog) ClassInfo() *class.Info { return dynastyDogClass.Info() }
//	func (x *Dog) AsAny() any           { return x }
//	func (x *Dog) AsParent() *Animal    { return &x.base }
//
// Records are built and registered while package variables initialise, so
// every later ClassInfo call is a plain pointer read.
package class

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/teranos/dynasty/reflection"
)

// Class is implemented by every type annotated with a dynasty directive.
type Class interface {
	// ClassInfo returns the type's process-wide class record. It does not
	// read the receiver, so it is safe on a nil pointer.
	ClassInfo() *Info

	// AsAny exposes the receiver pointer for type-checked downcasts.
	// The returned value is mutable through the recovered *T.
	AsAny() any
}

// Inherits is implemented by types annotated with //dynasty:inherit P.
type Inherits[P any] interface {
	Class

	// AsParent returns a pointer to the embedded base instance. Writes
	// through it are visible on the child.
	AsParent() *P
}

// TypeID is a comparable, process-unique identity for a Go type.
// The zero TypeID identifies no type.
type TypeID struct {
	t reflect.Type
}

// TypeOf returns the identity of T.
func TypeOf[T any]() TypeID {
	return TypeID{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeOfValue returns the identity of v's dynamic type. Pointers are not
// dereferenced.
func TypeOfValue(v any) TypeID {
	if v == nil {
		return TypeID{}
	}
	return TypeID{t: reflect.TypeOf(v)}
}

// Type returns the underlying reflect.Type (nil for the zero TypeID).
func (id TypeID) Type() reflect.Type { return id.t }

// PkgPath returns the import path of the package declaring the type.
func (id TypeID) PkgPath() string {
	if id.t == nil {
		return ""
	}
	return id.t.PkgPath()
}

// IsZero reports whether id identifies no type.
func (id TypeID) IsZero() bool { return id.t == nil }

func (id TypeID) String() string {
	if id.t == nil {
		return "<none>"
	}
	return id.t.String()
}

// Info is the class record for one type. It is immutable once registered.
type Info struct {
	// ID is a random identifier assigned once per type.
	ID uuid.UUID
	// Name is the declared type name.
	Name string
	// Parent is the declared parent's identity; zero for root classes.
	Parent TypeID
	// Type is the class's own identity.
	Type TypeID
	// Reflection is populated only in builds with the dynasty_reflection tag.
	Reflection *reflection.Data
}

// HasParent reports whether the class declared a parent.
func (i *Info) HasParent() bool {
	return i != nil && !i.Parent.IsZero()
}

func (i *Info) String() string {
	if i == nil {
		return "<nil class>"
	}
	if i.HasParent() {
		return fmt.Sprintf("%s(%s)", i.Name, i.Parent)
	}
	return i.Name
}

// newInfo builds a record with a fresh id.
func newInfo(name string, self, parent TypeID) *Info {
	info := &Info{
		ID:     uuid.New(),
		Name:   name,
		Parent: parent,
		Type:   self,
	}
	if reflectionEnabled {
		info.Reflection = reflection.Of(self.t)
	}
	return info
}
