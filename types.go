package fieldseal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueType coerces logical values to and from the plaintext strings that
// get encrypted. Cast reports present=false for absent values (nils),
// which serialize to nil and are never encrypted; Load reverses Cast.
// Casts are canonical: two inputs representing the same logical value
// produce the same string, which is what deterministic equality relies
// on.
//
// Implementations must be stateless. The package singletons below cover
// the common column types.
type ValueType interface {
	Cast(v any) (plaintext string, present bool, err error)
	Load(plaintext string) (any, error)
}

// Package value types.
var (
	// String handles string, *string, and []byte values.
	String ValueType = stringType{}
	// Int64 handles Go integer types, stored as decimal strings.
	Int64 ValueType = int64Type{}
	// Float64 handles float64 and float32, stored in shortest
	// round-trippable form.
	Float64 ValueType = float64Type{}
	// Bool stores "true" or "false".
	Bool ValueType = boolType{}
	// Time stores RFC 3339 with nanoseconds, offset preserved.
	Time ValueType = timeType{}
	// JSON marshals any value, loading back into generic JSON types.
	JSON ValueType = jsonType{}
)

type stringType struct{}

func (stringType) Cast(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case *string:
		if x == nil {
			return "", false, nil
		}
		return *x, true, nil
	case []byte:
		if x == nil {
			return "", false, nil
		}
		return string(x), true, nil
	default:
		return "", false, fmt.Errorf("fieldseal: cannot cast %T to string", v)
	}
}

func (stringType) Load(plaintext string) (any, error) { return plaintext, nil }

type int64Type struct{}

func (int64Type) Cast(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case int:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int8:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int16:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int32:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int64:
		return strconv.FormatInt(x, 10), true, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return "", false, fmt.Errorf("fieldseal: %d overflows int64", x)
		}
		return strconv.FormatInt(int64(x), 10), true, nil
	case uint8:
		return strconv.FormatInt(int64(x), 10), true, nil
	case uint16:
		return strconv.FormatInt(int64(x), 10), true, nil
	case uint32:
		return strconv.FormatInt(int64(x), 10), true, nil
	case uint64:
		if x > math.MaxInt64 {
			return "", false, fmt.Errorf("fieldseal: %d overflows int64", x)
		}
		return strconv.FormatInt(int64(x), 10), true, nil
	case *int64:
		if x == nil {
			return "", false, nil
		}
		return strconv.FormatInt(*x, 10), true, nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return "", false, fmt.Errorf("fieldseal: cannot cast %q to int64: %v", x, err)
		}
		return strconv.FormatInt(n, 10), true, nil
	default:
		return "", false, fmt.Errorf("fieldseal: cannot cast %T to int64", v)
	}
}

func (int64Type) Load(plaintext string) (any, error) {
	n, err := strconv.ParseInt(plaintext, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("fieldseal: loading int64: %v", err)
	}
	return n, nil
}

type float64Type struct{}

func (float64Type) Cast(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true, nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), true, nil
	case *float64:
		if x == nil {
			return "", false, nil
		}
		return strconv.FormatFloat(*x, 'g', -1, 64), true, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return "", false, fmt.Errorf("fieldseal: cannot cast %q to float64: %v", x, err)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true, nil
	default:
		return "", false, fmt.Errorf("fieldseal: cannot cast %T to float64", v)
	}
}

func (float64Type) Load(plaintext string) (any, error) {
	f, err := strconv.ParseFloat(plaintext, 64)
	if err != nil {
		return nil, fmt.Errorf("fieldseal: loading float64: %v", err)
	}
	return f, nil
}

type boolType struct{}

func (boolType) Cast(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	case *bool:
		if x == nil {
			return "", false, nil
		}
		return strconv.FormatBool(*x), true, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return "", false, fmt.Errorf("fieldseal: cannot cast %q to bool: %v", x, err)
		}
		return strconv.FormatBool(b), true, nil
	default:
		return "", false, fmt.Errorf("fieldseal: cannot cast %T to bool", v)
	}
}

func (boolType) Load(plaintext string) (any, error) {
	b, err := strconv.ParseBool(plaintext)
	if err != nil {
		return nil, fmt.Errorf("fieldseal: loading bool: %v", err)
	}
	return b, nil
}

type timeType struct{}

func (timeType) Cast(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case time.Time:
		return x.Format(time.RFC3339Nano), true, nil
	case *time.Time:
		if x == nil {
			return "", false, nil
		}
		return x.Format(time.RFC3339Nano), true, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return "", false, fmt.Errorf("fieldseal: cannot cast %q to time: %v", x, err)
		}
		return t.Format(time.RFC3339Nano), true, nil
	default:
		return "", false, fmt.Errorf("fieldseal: cannot cast %T to time", v)
	}
}

func (timeType) Load(plaintext string) (any, error) {
	t, err := time.Parse(time.RFC3339Nano, plaintext)
	if err != nil {
		return nil, fmt.Errorf("fieldseal: loading time: %v", err)
	}
	return t, nil
}

type jsonType struct{}

func (jsonType) Cast(v any) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false, fmt.Errorf("fieldseal: cannot cast %T to json: %v", v, err)
	}
	return string(b), true, nil
}

func (jsonType) Load(plaintext string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(plaintext), &out); err != nil {
		return nil, fmt.Errorf("fieldseal: loading json: %v", err)
	}
	return out, nil
}
