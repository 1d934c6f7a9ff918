package logsnag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies which variant an InsightValue holds.
type ValueKind int

const (
	// KindInvalid is the kind of the zero InsightValue.
	KindInvalid ValueKind = iota
	KindString
	KindInt
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// InsightValue is the value of an insight: a string, an integer or a
// boolean. It is encoded on the wire as the bare underlying value.
type InsightValue struct {
	kind ValueKind
	s    string
	i    int64
	b    bool
}

// StringValue returns an InsightValue holding s.
func StringValue(s string) InsightValue {
	return InsightValue{kind: KindString, s: s}
}

// IntValue returns an InsightValue holding n.
func IntValue(n int64) InsightValue {
	return InsightValue{kind: KindInt, i: n}
}

// BoolValue returns an InsightValue holding b.
func BoolValue(b bool) InsightValue {
	return InsightValue{kind: KindBool, b: b}
}

// Kind returns the variant held by v.
func (v InsightValue) Kind() ValueKind { return v.kind }

// Int returns the integer held by v and whether v is an integer.
func (v InsightValue) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Bool returns the boolean held by v and whether v is a boolean.
func (v InsightValue) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// String formats the value regardless of its kind.
func (v InsightValue) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// MarshalJSON encodes the bare value with no wrapper object.
func (v InsightValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return nil, fmt.Errorf("logsnag: insight value is not set")
	}
}

// UnmarshalJSON accepts a JSON string, integer or boolean.
func (v *InsightValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("logsnag: empty insight value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("logsnag: insight value must be a string, integer or boolean, got %s", data)
	}
	*v = IntValue(n)
	return nil
}

// ParseInsightValue builds a value of the named kind ("string", "int" or
// "bool") from its textual form.
func ParseInsightValue(kind, text string) (InsightValue, error) {
	switch kind {
	case "", "string":
		return StringValue(text), nil
	case "int":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return InsightValue{}, fmt.Errorf("parse int insight value %q: %w", text, err)
		}
		return IntValue(n), nil
	case "bool":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return InsightValue{}, fmt.Errorf("parse bool insight value %q: %w", text, err)
		}
		return BoolValue(b), nil
	default:
		return InsightValue{}, fmt.Errorf("unknown insight value type %q", kind)
	}
}
