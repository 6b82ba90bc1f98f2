package estimate

import (
	"reflect"
)

const (
	// budget of structural descents, which bounds worst-case work and
	// terminates the walk on cyclic structures the visited set misses.
	// Unwrapping a pointer or interface is free, only descending into
	// fields, elements or map pairs consumes budget.
	maxWalkDepth = 20

	// charged for values the runtime cannot introspect
	fallbackValueSize = 50
)

// EstimateSize walks the object graph reachable from the given value and
// returns its approximate byte footprint. The walk is a heuristic: revisited
// references and values past the depth budget contribute nothing, and values
// that cannot be introspected are charged a fixed fallback instead of
// failing. It never returns an error.
func EstimateSize(value interface{}) int64 {
	visited := map[uintptr]bool{}
	return estimateValue(reflect.ValueOf(value), visited, 0)
}

// MeasureAll sums the approximate byte footprint of all elements of a cache.
// The visited set is shared across elements, so structures referenced from
// several entries are counted once.
func MeasureAll(elements []interface{}) int64 {
	visited := map[uintptr]bool{}

	size := int64(0)
	for _, element := range elements {
		size += estimateValue(reflect.ValueOf(element), visited, 0)
	}
	return size
}

func estimateValue(value reflect.Value, visited map[uintptr]bool, depth int) int64 {
	if !value.IsValid() || depth > maxWalkDepth {
		return 0
	}

	switch value.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return int64(value.Type().Size())

	case reflect.String:
		return int64(value.Len())

	case reflect.Pointer:
		if value.IsNil() || visited[value.Pointer()] {
			return 0
		}
		visited[value.Pointer()] = true
		// unwrapping is not a descent
		return estimateValue(value.Elem(), visited, depth)

	case reflect.Interface:
		if value.IsNil() {
			return 0
		}
		return estimateValue(value.Elem(), visited, depth)

	case reflect.Slice:
		if value.IsNil() || visited[value.Pointer()] {
			return 0
		}
		visited[value.Pointer()] = true
		return estimateSequence(value, visited, depth)

	case reflect.Array:
		return estimateSequence(value, visited, depth)

	case reflect.Map:
		if value.IsNil() || visited[value.Pointer()] {
			return 0
		}
		visited[value.Pointer()] = true

		size := int64(0)
		iterator := value.MapRange()
		for iterator.Next() {
			size += estimateValue(iterator.Key(), visited, depth+1)
			size += estimateValue(iterator.Value(), visited, depth+1)
		}
		return size

	case reflect.Struct:
		size := int64(0)
		for i := 0; i < value.NumField(); i++ {
			size += estimateValue(value.Field(i), visited, depth+1)
		}
		return size

	default:
		// chan, func, unsafe pointer: not introspectable
		return fallbackValueSize
	}
}

func estimateSequence(value reflect.Value, visited map[uintptr]bool, depth int) int64 {
	size := int64(0)
	for i := 0; i < value.Len(); i++ {
		size += estimateValue(value.Index(i), visited, depth+1)
	}
	return size
}
