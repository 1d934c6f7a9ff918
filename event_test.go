package logsnag

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeObject(t *testing.T, v any) map[string]any {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return out
}

func TestLog_MinimalOmitsOptionalFields(t *testing.T) {
	t.Parallel()

	got := decodeObject(t, Log{Project: "p", Channel: "c", Event: "e"})
	want := map[string]any{"project": "p", "channel": "c", "event": "e"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestLog_EmptyTagsOmitted(t *testing.T) {
	t.Parallel()

	got := decodeObject(t, Log{Project: "p", Channel: "c", Event: "e", Tags: NewTags()})
	if _, ok := got["tags"]; ok {
		t.Errorf("empty tags emitted: %v", got)
	}
}

func TestLog_AllFields(t *testing.T) {
	t.Parallel()

	tags := NewTags()
	tags.Insert("Plan", "Pro")

	got := decodeObject(t, Log{
		Project:     "p",
		Channel:     "c",
		Event:       "e",
		Description: "d",
		Icon:        "🥳",
		Notify:      Bool(false),
		Tags:        tags,
	})
	want := map[string]any{
		"project":     "p",
		"channel":     "c",
		"event":       "e",
		"description": "d",
		"icon":        "🥳",
		"notify":      false,
		"tags":        map[string]any{"plan": "pro"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestInsight_BareValue(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Insight{Project: "p", Title: "Users", Value: IntValue(32)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"project":"p","title":"Users","value":32}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestInsight_RoundTrip(t *testing.T) {
	t.Parallel()

	in := Insight{Project: "p", Title: "Status", Value: StringValue("online"), Icon: "🟢"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out Insight
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(in, out, cmp.AllowUnexported(InsightValue{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
