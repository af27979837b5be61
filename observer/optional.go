package observer

// optional is a value that may be absent.
type optional[T any] struct {
	value T
	valid bool
}

func (o *optional[T]) set(v T) {
	o.value = v
	o.valid = true
}

func (o *optional[T]) get() (T, bool) {
	return o.value, o.valid
}

func (o *optional[T]) invalidate() {
	o.valid = false
}
