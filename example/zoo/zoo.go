// Package zoo shows dynasty classes in use. Run go generate after editing
// the annotated structs.
package zoo

//go:generate go run github.com/teranos/dynasty/cmd/dynasty generate

// Animal is the root class of the zoo.
//
//dynasty:class
type Animal struct {
	Name string
	Legs int
}

// Dog is an Animal.
//
//dynasty:inherit Animal
type Dog struct {
	base  Animal
	Breed string
}

// Puppy is a Dog.
//
//dynasty:inherit Dog
type Puppy struct {
	base     Dog
	AgeWeeks int
}

// Cat is an Animal.
//
//dynasty:inherit Animal
type Cat struct {
	base   Animal
	Indoor bool
}

// NewDog builds a four-legged Dog.
func NewDog(name, breed string) *Dog {
	return &Dog{Animal{Name: name, Legs: 4}, breed}
}

// Describe works on any Animal, including children through AsParent.
func Describe(a *Animal) string {
	return a.Name
}

// Speak uses the inherited Name.
func (d *Dog) Speak() string {
	return d.AsParent().Name + " says woof"
}
