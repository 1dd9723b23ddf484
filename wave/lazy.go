package wave

// lazy is an explicit Clean/Dirty holder for a derived value. Mutations
// that invalidate the value call invalidate; accessors call get, which
// recomputes only in the Dirty state.
type lazy[T any] struct {
	clean bool
	value T
}

func (l *lazy[T]) invalidate() {
	var zero T
	l.clean = false
	l.value = zero
}

func (l *lazy[T]) set(v T) {
	l.value = v
	l.clean = true
}

func (l *lazy[T]) get(compute func() T) T {
	if !l.clean {
		l.value = compute()
		l.clean = true
	}
	return l.value
}
