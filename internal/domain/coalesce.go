package domain

// Coalesce returns the first non-zero value in vals.
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

// Deref returns the value behind the first non-nil pointer, or fallback.
// Seed defaults cascade through it: entry, then file defaults.
func Deref[T any](fallback T, ptrs ...*T) T {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}
