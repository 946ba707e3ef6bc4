package source

import "reflect"

// IsEmpty reports whether value should be treated as "no data" relative to the
// handler's empty value. List, map and string shapes compare by length first so
// a nil slice and an allocated zero-length slice are both empty; everything
// else uses structural equality against empty.
func IsEmpty[T any](value, empty T) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.String:
		e := reflect.ValueOf(empty)
		if e.Kind() == v.Kind() && e.Len() == 0 {
			return v.Len() == 0
		}
	case reflect.Invalid:
		// Untyped nil interface value.
		return true
	}
	return reflect.DeepEqual(value, empty)
}
