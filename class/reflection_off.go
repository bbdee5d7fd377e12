//go:build !dynasty_reflection

package class

const reflectionEnabled = false
