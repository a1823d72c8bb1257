package eval

import (
	"fmt"
	"unicode/utf8"

	"grol.io/jsi/object"
)

// getProperty is obj[key]: own and prototype properties of objects,
// elements of arrays and strings, the data properties of each type, then
// the host methods registered for the type. Missing is undefined.
func (s *State) getProperty(obj, key object.Object) (object.Object, error) {
	name := object.ToString(key)
	switch o := obj.(type) {
	case object.Undefined, object.Null:
		return nil, s.undefinedProperty(name, obj, false)
	case *object.Map:
		if name == "__proto__" {
			if o.Proto == nil {
				return object.NULL, nil
			}
			return o.Proto, nil
		}
		if v, ok := o.Get(name); ok {
			return v, nil
		}
	case *object.Array:
		if i, ok := object.ToIndex(key); ok {
			return o.Get(i), nil
		}
		if name == "length" {
			return object.Number{Value: float64(len(o.Elements))}, nil
		}
		if v, ok := o.Extra[name]; ok {
			return v, nil
		}
	case object.String:
		if i, ok := object.ToIndex(key); ok {
			return charAt(o.Value, i), nil
		}
		if name == "length" {
			return object.Number{Value: float64(utf8.RuneCountInString(o.Value))}, nil
		}
	case *object.Regexp:
		switch name {
		case "source":
			return object.String{Value: o.Source}, nil
		case "flags":
			return object.String{Value: o.Flags}, nil
		case "global":
			return object.NativeBoolToBooleanObject(o.Global()), nil
		case "lastIndex":
			return object.Number{Value: float64(o.LastIndex)}, nil
		}
	case *object.Function:
		if name == "name" {
			return object.String{Value: o.Name()}, nil
		}
		if name == "length" {
			return object.Number{Value: float64(len(o.Literal.Parameters))}, nil
		}
	case *object.Extension:
		if name == "name" {
			return object.String{Value: o.Name}, nil
		}
	}
	if ext, ok := object.Method(methodType(obj), name); ok {
		return ext, nil
	}
	return object.UNDEFINED, nil
}

// methodType is the method table of a value: closures and native functions share one.
func methodType(obj object.Object) object.Type {
	if obj.Type() == object.EXTENSION {
		return object.FUNC
	}
	return obj.Type()
}

func charAt(s string, i int) object.Object {
	for j, r := range []rune(s) {
		if j == i {
			return object.String{Value: string(r)}
		}
	}
	return object.UNDEFINED
}

// setProperty is obj[key] = val. Writes to primitives are ignored.
func (s *State) setProperty(obj, key, val object.Object) error {
	name := object.ToString(key)
	switch o := obj.(type) {
	case object.Undefined, object.Null:
		return s.undefinedProperty(name, obj, true)
	case *object.Map:
		if name == "__proto__" {
			switch p := val.(type) {
			case *object.Map:
				o.Proto = p
			case object.Null:
				o.Proto = nil
			}
			return nil
		}
		o.Set(name, val)
	case *object.Array:
		if i, ok := object.ToIndex(key); ok {
			if err := checkGrowth(o, i+1); err != nil {
				return err
			}
			o.Set(i, val)
			return nil
		}
		if name == "length" {
			n, ok := object.ToIndex(val)
			if !ok {
				return fmt.Errorf("invalid array length %s", val.Inspect())
			}
			if err := checkGrowth(o, n); err != nil {
				return err
			}
			o.SetLength(n)
			return nil
		}
		if o.Extra == nil {
			o.Extra = make(map[string]object.Object)
		}
		o.Extra[name] = val
	case *object.Regexp:
		if name == "lastIndex" {
			o.LastIndex = object.ToInteger(val, 0, maxInt)
		}
	}
	return nil
}

const maxInt = int(^uint(0) >> 1)

// checkGrowth errors instead of growing an array to an unreasonable size.
func checkGrowth(a *object.Array, n int) error {
	if n <= len(a.Elements) {
		return nil
	}
	if n-len(a.Elements) > object.MaxArrayGrowth {
		return fmt.Errorf("array length %d too large, at most %d elements can be added at once", n, object.MaxArrayGrowth)
	}
	if ok, free := object.SizeOk(n - len(a.Elements)); !ok {
		return fmt.Errorf("array length %d would exceed memory (%d free)", n, free)
	}
	return nil
}
