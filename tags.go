package logsnag

import (
	"encoding/json"
	"maps"

	"github.com/joshuawatkins04/logsnag_sdk/internal/tagnorm"
)

// NormalizeTag normalizes a tag key and value into the form accepted by the
// API: characters other than ASCII letters, whitespace and dashes are
// removed, whitespace runs become a single dash, and the result is
// lowercased. Digits and underscores are removed, not converted.
func NormalizeTag(key, value string) (string, string) {
	return tagnorm.Pair(key, value)
}

// Tags is a set of normalized tag key/value pairs attached to an event log.
// The zero value is an empty set ready to use.
//
// Like a map, Tags has reference semantics: once a set holds storage, copies
// of it share that storage and an Insert through one copy is visible in all.
// Client and builders copy the set before sending, so later changes never
// reach a payload already handed over.
type Tags struct {
	m map[string]string
}

// NewTags returns an empty tag set.
func NewTags() Tags {
	return Tags{m: make(map[string]string)}
}

// Insert normalizes key and value and stores the pair. An existing entry
// with the same normalized key is overwritten.
func (t *Tags) Insert(key, value string) {
	if t.m == nil {
		t.m = make(map[string]string)
	}
	k, v := tagnorm.Pair(key, value)
	t.m[k] = v
}

// Get returns the value stored under the normalized form of key.
func (t Tags) Get(key string) (string, bool) {
	v, ok := t.m[tagnorm.Token(key)]
	return v, ok
}

// Len returns the number of tags in the set.
func (t Tags) Len() int {
	return len(t.m)
}

// Map returns a copy of the tags as a plain map.
func (t Tags) Map() map[string]string {
	out := make(map[string]string, len(t.m))
	maps.Copy(out, t.m)
	return out
}

// IsZero reports whether the set holds no tags. It lets the payload
// encoder omit empty tag sets.
func (t Tags) IsZero() bool {
	return len(t.m) == 0
}

// clone returns a deep copy so builders can hand out payload snapshots.
func (t Tags) clone() Tags {
	if t.m == nil {
		return Tags{}
	}
	return Tags{m: maps.Clone(t.m)}
}

// MarshalJSON encodes the set as a plain string-to-string object.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t.m)
}

// UnmarshalJSON decodes a string-to-string object, normalizing each entry.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.m = make(map[string]string, len(raw))
	for k, v := range raw {
		t.Insert(k, v)
	}
	return nil
}
