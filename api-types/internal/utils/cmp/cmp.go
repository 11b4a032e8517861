package cmp

import "maps"

func SliceEqual[T interface{ Equal(T) bool }](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}

	for nth := range a {
		if !a[nth].Equal(b[nth]) {
			return false
		}
	}

	return true
}

func MapEqual[K comparable, V interface{ Equal(V) bool }](a, b map[K]V) bool {
	if len(a) != len(b) {
		return false
	}

	// copy b
	b = maps.Clone(b)

	for k, va := range a {
		vb, ok := b[k]
		if !ok || !va.Equal(vb) {
			return false
		}
		delete(b, k)
	}

	return len(b) == 0
}
