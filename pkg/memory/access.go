package memory

import (
	"fmt"
	"reflect"
	"strings"
)

// AccessProperty reads a named property from a map or struct. Lookup is exact
// first, then case-insensitive. The bool reports whether the name resolved.
func AccessProperty(instance any, name string) (any, bool) {
	switch v := instance.(type) {
	case nil:
		return nil, false
	case map[string]any:
		if val, ok := v[name]; ok {
			return val, true
		}
		for k, val := range v {
			if strings.EqualFold(k, name) {
				return val, true
			}
		}
		return nil, false
	case map[string]string:
		if val, ok := v[name]; ok {
			return val, true
		}
		for k, val := range v {
			if strings.EqualFold(k, name) {
				return val, true
			}
		}
		return nil, false
	}

	rv := reflect.ValueOf(instance)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		key := reflect.ValueOf(name).Convert(rv.Type().Key())
		if val := rv.MapIndex(key); val.IsValid() {
			return val.Interface(), true
		}
		iter := rv.MapRange()
		for iter.Next() {
			if strings.EqualFold(iter.Key().String(), name) {
				return iter.Value().Interface(), true
			}
		}
	case reflect.Struct:
		field := rv.FieldByNameFunc(func(f string) bool { return strings.EqualFold(f, name) })
		if field.IsValid() && field.CanInterface() {
			return field.Interface(), true
		}
	}
	return nil, false
}

// AccessIndex reads the idx-th element of a list.
func AccessIndex(instance any, idx int) (any, error) {
	switch v := instance.(type) {
	case nil:
		return nil, nil
	case []any:
		if idx < 0 || idx >= len(v) {
			return nil, fmt.Errorf("index %d out of range for list of length %d", idx, len(v))
		}
		return v[idx], nil
	}

	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%v is not a collection", instance)
	}
	if idx < 0 || idx >= rv.Len() {
		return nil, fmt.Errorf("index %d out of range for list of length %d", idx, rv.Len())
	}
	return rv.Index(idx).Interface(), nil
}

// SetProperty writes name on a map. Other containers are rejected.
func SetProperty(instance any, name string, value any) error {
	switch v := instance.(type) {
	case map[string]any:
		for k := range v {
			if k != name && strings.EqualFold(k, name) {
				v[k] = value
				return nil
			}
		}
		v[name] = value
		return nil
	}
	rv := reflect.ValueOf(instance)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		val := reflect.ValueOf(value)
		if !val.IsValid() {
			val = reflect.Zero(rv.Type().Elem())
		}
		if !val.Type().AssignableTo(rv.Type().Elem()) {
			return fmt.Errorf("cannot assign %T to map of %s", value, rv.Type().Elem())
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), val)
		return nil
	}
	return fmt.Errorf("cannot set property %q on %T", name, instance)
}

// SetIndex writes the idx-th element of a []any.
func SetIndex(instance any, idx int, value any) error {
	list, ok := instance.([]any)
	if !ok {
		return fmt.Errorf("cannot index into %T", instance)
	}
	if idx < 0 || idx >= len(list) {
		return fmt.Errorf("index %d out of range for list of length %d", idx, len(list))
	}
	list[idx] = value
	return nil
}
