package object

// Map is a script object: string keyed properties kept in insertion order
// and an optional prototype consulted on reads.
type Map struct {
	keys  []string
	store map[string]Object
	Proto *Map
}

func NewMap() *Map {
	return &Map{store: make(map[string]Object)}
}

// NewMapWithProto is Object.create(proto); proto may be nil.
func NewMapWithProto(proto *Map) *Map {
	m := NewMap()
	m.Proto = proto
	return m
}

func (m *Map) Type() Type      { return MAP }
func (m *Map) Inspect() string { return inspect(m, nil) }

// Get looks the key up on the object then along its prototype chain.
func (m *Map) Get(key string) (Object, bool) {
	for o := m; o != nil; o = o.Proto {
		if v, ok := o.store[key]; ok {
			return v, true
		}
	}
	return UNDEFINED, false
}

func (m *Map) HasOwn(key string) bool {
	_, ok := m.store[key]
	return ok
}

// Set always writes an own property.
func (m *Map) Set(key string, v Object) {
	if _, ok := m.store[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.store[key] = v
}

// Keys returns own keys in insertion order.
func (m *Map) Keys() []string {
	res := make([]string, len(m.keys))
	copy(res, m.keys)
	return res
}

// MakeMap builds an object from alternating key, value pairs.
func MakeMap(kv ...any) *Map {
	m := NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(Object))
	}
	return m
}
