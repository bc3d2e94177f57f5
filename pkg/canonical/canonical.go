// Package canonical produces a deterministic textual serialization of nested
// payloads. Two structurally equal values serialize to byte-identical output
// regardless of map insertion order, which makes the result usable as signing
// input.
package canonical

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ErrCycle is returned when the payload contains a reference cycle.
var ErrCycle = errors.New("canonical: payload contains a cycle")

// ErrUnsupported is returned for values with no canonical form (channels,
// functions, complex numbers).
var ErrUnsupported = errors.New("canonical: unsupported value")

// Marshal serializes payload deterministically. Map keys are sorted
// lexicographically at every nesting level; slice order is preserved because
// sequence order is semantically significant.
func Marshal(payload interface{}) (string, error) {
	var b strings.Builder
	seen := make(map[uintptr]bool)
	if err := writeValue(&b, reflect.ValueOf(payload), seen); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, v reflect.Value, seen map[uintptr]bool) error {
	if !v.IsValid() {
		b.WriteString("null")
		return nil
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("null")
			return nil
		}
		return writeValue(b, v.Elem(), seen)
	case reflect.Ptr:
		if v.IsNil() {
			b.WriteString("null")
			return nil
		}
		addr := v.Pointer()
		if seen[addr] {
			return ErrCycle
		}
		seen[addr] = true
		err := writeValue(b, v.Elem(), seen)
		delete(seen, addr)
		return err
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
		return nil
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
		return nil
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
		return nil
	case reflect.Slice, reflect.Array:
		return writeSequence(b, v, seen)
	case reflect.Map:
		return writeMap(b, v, seen)
	case reflect.Struct:
		return writeStruct(b, v, seen)
	default:
		return fmt.Errorf("%w: kind %s", ErrUnsupported, v.Kind())
	}
}

func writeSequence(b *strings.Builder, v reflect.Value, seen map[uintptr]bool) error {
	if v.Kind() == reflect.Slice && !v.IsNil() {
		addr := v.Pointer()
		if seen[addr] {
			return ErrCycle
		}
		seen[addr] = true
		defer delete(seen, addr)
	}
	b.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeValue(b, v.Index(i), seen); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}

func writeMap(b *strings.Builder, v reflect.Value, seen map[uintptr]bool) error {
	if v.IsNil() {
		b.WriteString("null")
		return nil
	}
	addr := v.Pointer()
	if seen[addr] {
		return ErrCycle
	}
	seen[addr] = true
	defer delete(seen, addr)

	keys := make([]string, 0, v.Len())
	byKey := make(map[string]reflect.Value, v.Len())
	for _, k := range v.MapKeys() {
		s, err := keyString(k)
		if err != nil {
			return err
		}
		keys = append(keys, s)
		byKey[s] = v.MapIndex(k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		if err := writeValue(b, byKey[k], seen); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// writeStruct serializes exported fields under their lexicographically sorted
// names, honoring json tags so struct and map renditions of the same payload
// canonicalize identically.
func writeStruct(b *strings.Builder, v reflect.Value, seen map[uintptr]bool) error {
	t := v.Type()
	names := make([]string, 0, t.NumField())
	byName := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		names = append(names, name)
		byName[name] = v.Field(i)
	}
	sort.Strings(names)

	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte(':')
		if err := writeValue(b, byName[name], seen); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func keyString(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	default:
		return "", fmt.Errorf("%w: map key kind %s", ErrUnsupported, k.Kind())
	}
}
