package aria2

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Reserved option keys. The submission pipeline always recomputes these.
const (
	OptionDir        = "dir"
	OptionSelectFile = "select-file"
	OptionIndexOut   = "index-out"
	OptionGID        = "gid"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a single aria2 option value: a string, integer, boolean or list of
// strings. aria2 takes every scalar as a string on the wire and repeated
// options as a string array.
type Value struct {
	kind Kind
	str  string
	num  int64
	flag bool
	list []string
}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int builds an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List builds a list value. A nil list encodes as an empty array.
func List(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// ValueOf converts a decoded configuration value into a Value.
func ValueOf(v any) (Value, error) {
	switch value := v.(type) {
	case Value:
		return value, nil
	case string:
		return String(value), nil
	case bool:
		return Bool(value), nil
	case int:
		return Int(int64(value)), nil
	case int8:
		return Int(int64(value)), nil
	case int16:
		return Int(int64(value)), nil
	case int32:
		return Int(int64(value)), nil
	case int64:
		return Int(value), nil
	case uint8:
		return Int(int64(value)), nil
	case uint16:
		return Int(int64(value)), nil
	case uint32:
		return Int(int64(value)), nil
	case []string:
		return List(value...), nil
	case []any:
		items := make([]string, 0, len(value))
		for _, item := range value {
			text, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("unsupported list item type %T (want string)", item)
			}
			items = append(items, text)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported option type %T (want string, integer, bool or list of strings)", v)
	}
}

// Kind reports the value's type.
func (v Value) Kind() Kind { return v.kind }

// String returns the text form; lists are comma-joined.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return v.str
	}
}

// List returns the list items, or the text form as a single item for
// scalar values.
func (v Value) List() []string {
	if v.kind == KindList {
		return slices.Clone(v.list)
	}
	return []string{v.String()}
}

// MarshalJSON encodes scalars as strings and lists as string arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.String())
}

// Options is the option bag sent with a job.
type Options map[string]Value

// Clone returns an independent copy.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for key, value := range o {
		if value.kind == KindList {
			value.list = slices.Clone(value.list)
		}
		out[key] = value
	}
	return out
}

// Keys returns the option keys in sorted order.
func (o Options) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}
