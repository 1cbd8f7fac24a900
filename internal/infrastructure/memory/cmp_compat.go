package memory

// cmpOr mirrors the standard library's cmp.Or (Go 1.22+) so the package
// builds with Go 1.21: it returns the first argument that is not the zero
// value, or the zero value if there is none.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
