package class

import "github.com/teranos/dynasty/errors"

// Handle holds the class record of T. Generated code keeps one Handle per
// type in a package variable.
type Handle[T any] struct {
	info *Info
}

// Info returns the record. It never changes after Define/Derive returns.
func (h *Handle[T]) Info() *Info {
	return h.info
}

// Define builds the record of a root class T and registers it in Default.
// It panics if Default already holds a different record for T or name;
// both indicate a duplicated or stale generated file.
func Define[T any](name string) *Handle[T] {
	return mustRegister[T](Default, newInfo(name, TypeOf[T](), TypeID{}))
}

// Derive builds the record of class T whose declared parent is P and
// registers it in Default. P does not need to be registered first.
func Derive[T, P any](name string) *Handle[T] {
	return mustRegister[T](Default, newInfo(name, TypeOf[T](), TypeOf[P]()))
}

func mustRegister[T any](r *Registry, info *Info) *Handle[T] {
	if err := r.Register(info); err != nil {
		panic(errors.Wrapf(err, "dynasty: cannot register class %s", info.Name))
	}
	return &Handle[T]{info: info}
}

// InfoOf returns the registered record of T, or nil if T is not a class.
func InfoOf[T any]() *Info {
	info, ok := Default.Lookup(TypeOf[T]())
	if !ok {
		return nil
	}
	return info
}

// As downcasts c to *T through its type-erased view.
func As[T any](c Class) (*T, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.AsAny().(*T)
	return t, ok && t != nil
}

// IsA reports whether c's class is ancestor or descends from it, following
// parent links through Default.
func IsA(c Class, ancestor TypeID) bool {
	if c == nil {
		return false
	}
	info := c.ClassInfo()
	if info == nil {
		return false
	}
	return info.Type == ancestor || Default.IsSubclass(info.Type, ancestor)
}

// ParentOf returns the embedded base of c.
func ParentOf[P any](c Inherits[P]) *P {
	return c.AsParent()
}
