package utils

func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to value or the zero value for nil.
func Deref[T any](ptr *T) T {
	var zero T
	if ptr == nil {
		return zero
	}
	return *ptr
}

// NilIfEmpty maps "" to nil for optional string columns.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
