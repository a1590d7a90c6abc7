package handle

// Table pairs a Pool with dense storage for one value per slot. The zero Table owns a private pool; a
// Table from NewTable draws its handles from an Allocator instead. Table is not safe for concurrent use.
type Table[H Value, V any] struct {
	own    Pool[H]
	shared *Pool[H]
	values []V
}

// NewTable returns a Table whose handles come from a's pool for kind H. Only one Table per kind may be
// bound to the same Allocator, since slot indices address the Table's storage.
func NewTable[H Value, V any](a *Allocator) Table[H, V] {
	return Table[H, V]{shared: poolFor[H](a)}
}

func (t *Table[H, V]) pool() *Pool[H] {
	if t.shared != nil {
		return t.shared
	}
	return &t.own
}

// Insert stores value in a fresh slot and returns its handle
func (t *Table[H, V]) Insert(value V) H {
	h := t.pool().Allocate()

	index := int(Handle(h).Index())
	if index == len(t.values) {
		t.values = append(t.values, value)
	} else {
		t.values[index] = value
	}

	return h
}

// Get returns a pointer to h's value. The pointer is only valid until the next Insert.
func (t *Table[H, V]) Get(h H) (*V, error) {
	err := t.pool().Check(h)
	if err != nil {
		return nil, err
	}

	return &t.values[Handle(h).Index()], nil
}

// Remove frees h and returns the value it held
func (t *Table[H, V]) Remove(h H) (V, error) {
	var zero V

	err := t.pool().Free(h)
	if err != nil {
		return zero, err
	}

	index := Handle(h).Index()
	value := t.values[index]
	t.values[index] = zero

	return value, nil
}

// Valid reports whether h names a live entry
func (t *Table[H, V]) Valid(h H) bool {
	return t.pool().Valid(h)
}

// Each calls fn for every live entry in slot order until fn returns false
func (t *Table[H, V]) Each(fn func(h H, value *V) bool) {
	for index := range t.values {
		h, alive := t.pool().handleAt(index)
		if !alive {
			continue
		}

		if !fn(h, &t.values[index]) {
			return
		}
	}
}

// Len is the number of live entries
func (t *Table[H, V]) Len() int {
	return t.pool().Len()
}
