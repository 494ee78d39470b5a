// Package tag fills zero-valued struct fields from `default:"..."` tags.
// Config and logging structs rely on it so that a partially written
// configuration file still yields a usable value.
package tag

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const maxDepth = 32

var (
	ErrTargetMustBePointer = errors.New("target must be a pointer")
	ErrTargetIsNil         = errors.New("target is nil")
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrMaxDepthExceeded    = errors.New("max recursion depth exceeded")
)

// ApplyDefaults sets default values for zero struct fields based on the
// `default` struct tag. The target must be a non-nil pointer to a struct.
//
// Example:
//
//	type Config struct {
//	    Route   string        `default:"/session-expired"`
//	    Window  time.Duration `default:"500ms"`
//	}
func ApplyDefaults(target any) error {
	valueOf := reflect.ValueOf(target)
	if valueOf.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if valueOf.IsNil() {
		return ErrTargetIsNil
	}

	elem := valueOf.Elem()
	if elem.Kind() != reflect.Struct {
		return ErrUnsupportedType
	}

	return applyStruct(elem, 0)
}

func applyStruct(value reflect.Value, depth int) error {
	if depth >= maxDepth {
		return ErrMaxDepthExceeded
	}

	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldValue := value.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		tagValue := field.Tag.Get("default")

		switch fieldValue.Kind() {
		case reflect.Struct:
			if err := applyStruct(fieldValue, depth+1); err != nil {
				return err
			}
		case reflect.Pointer:
			if field.Type.Elem().Kind() == reflect.Struct && !fieldValue.IsNil() {
				if err := applyStruct(fieldValue.Elem(), depth+1); err != nil {
					return err
				}
			}
		default:
			if tagValue == "" || !fieldValue.IsZero() {
				continue
			}
			if err := setValue(fieldValue, tagValue); err != nil {
				return fmt.Errorf("field %q (tag %q): %w", field.Name, tagValue, err)
			}
		}
	}

	return nil
}

func setValue(value reflect.Value, str string) error {
	str = strings.TrimSpace(str)

	switch value.Kind() {
	case reflect.String:
		value.SetString(str)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if value.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(str)
			if err != nil {
				return err
			}
			value.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return err
		}
		value.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return err
		}
		value.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		value.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(str)
		if err != nil {
			return err
		}
		value.SetBool(b)

	case reflect.Slice:
		return setSlice(value, str)

	default:
		return ErrUnsupportedType
	}

	return nil
}

// setSlice fills a slice of basic elements from a comma-separated list.
func setSlice(value reflect.Value, str string) error {
	if str == "" {
		value.Set(reflect.MakeSlice(value.Type(), 0, 0))
		return nil
	}

	parts := strings.Split(str, ",")
	slice := reflect.MakeSlice(value.Type(), len(parts), len(parts))
	for i, part := range parts {
		if err := setValue(slice.Index(i), part); err != nil {
			return err
		}
	}

	value.Set(slice)
	return nil
}
