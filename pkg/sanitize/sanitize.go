// Package sanitize converts arbitrary analysis results into values that can be
// encoded as strict JSON (no NaN, no Inf, only maps, lists and primitives).
package sanitize

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	bytesType    = reflect.TypeOf([]byte(nil))

	basicTypes = map[reflect.Kind]reflect.Type{
		reflect.Bool:    reflect.TypeOf(false),
		reflect.Int:     reflect.TypeOf(int(0)),
		reflect.Int8:    reflect.TypeOf(int8(0)),
		reflect.Int16:   reflect.TypeOf(int16(0)),
		reflect.Int32:   reflect.TypeOf(int32(0)),
		reflect.Int64:   reflect.TypeOf(int64(0)),
		reflect.Uint:    reflect.TypeOf(uint(0)),
		reflect.Uint8:   reflect.TypeOf(uint8(0)),
		reflect.Uint16:  reflect.TypeOf(uint16(0)),
		reflect.Uint32:  reflect.TypeOf(uint32(0)),
		reflect.Uint64:  reflect.TypeOf(uint64(0)),
		reflect.Float32: reflect.TypeOf(float32(0)),
		reflect.Float64: reflect.TypeOf(float64(0)),
		reflect.String:  reflect.TypeOf(""),
	}
)

// Clean returns a JSON safe copy of v.
//
// Maps and structs become map[string]any (struct keys are the json field names),
// slices and arrays become []any, nil values and non-finite floats become nil,
// durations become seconds. Primitives are returned as their basic type.
// Everything else is converted to a float if it looks like a number
// or to its string representation otherwise.
//
// Clean is idempotent: Clean(Clean(x)) equals Clean(x).
func Clean(v any) any {
	if v == nil {
		return nil
	}
	return cleanValue(reflect.ValueOf(v))
}

//nolint:gocyclo,cyclop,exhaustive // central type switch
func cleanValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return cleanValue(rv.Elem())
	default:
	}

	if special, ok := cleanSpecial(rv); ok {
		return special
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		ret := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ret[mapKey(iter.Key())] = cleanValue(iter.Value())
		}
		return ret

	case reflect.Struct:
		return cleanStruct(rv)

	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Convert(bytesType).Interface().([]byte))
		}
		return cleanSequence(rv)

	case reflect.Array:
		return cleanSequence(rv)

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return rv.Convert(basicTypes[rv.Kind()]).Interface()

	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Convert(basicTypes[rv.Kind()]).Interface()

	default:
		return fallback(rv)
	}
}

// cleanSpecial handles types which need a dedicated conversion regardless of their kind
func cleanSpecial(rv reflect.Value) (any, bool) {
	switch rv.Type() {
	case durationType:
		return time.Duration(rv.Int()).Seconds(), true
	case timeType:
		//nolint:errcheck // checked by type
		return rv.Interface().(time.Time).Format(time.RFC3339), true
	default:
	}
	if !rv.CanInterface() {
		return nil, false
	}
	switch x := rv.Interface().(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return finiteOrNil(f), true
		}
		return x.String(), true
	case decimal.Decimal:
		return x.InexactFloat64(), true
	case decimal.NullDecimal:
		if !x.Valid {
			return nil, true
		}
		return x.Decimal.InexactFloat64(), true
	case driver.Valuer:
		// covers the sql.Null* wrappers
		val, err := x.Value()
		if err != nil || val == nil {
			return nil, true
		}
		return Clean(val), true
	}
	return nil, false
}

func cleanStruct(rv reflect.Value) any {
	raw := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &raw,
	})
	if err != nil {
		return fallback(rv)
	}
	if err := dec.Decode(rv.Interface()); err != nil {
		return fallback(rv)
	}
	ret := make(map[string]any, len(raw))
	for k, v := range raw {
		ret[k] = Clean(v)
	}
	return ret
}

func cleanSequence(rv reflect.Value) []any {
	ret := make([]any, rv.Len())
	for i := range rv.Len() {
		ret[i] = cleanValue(rv.Index(i))
	}
	return ret
}

func mapKey(k reflect.Value) string {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func fallback(rv reflect.Value) any {
	if !rv.CanInterface() {
		return nil
	}
	s := fmt.Sprint(rv.Interface())
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finiteOrNil(f)
	}
	return s
}

func finiteOrNil(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
