package logsnag

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		key       string
		value     string
		wantKey   string
		wantValue string
	}{
		{
			name:      "underscore stripped not converted",
			key:       "User_Name",
			value:     "test-username-id",
			wantKey:   "username",
			wantValue: "test-username-id",
		},
		{
			name:      "whitespace becomes dash",
			key:       "Sign Up  Source",
			value:     "Landing Page",
			wantKey:   "sign-up-source",
			wantValue: "landing-page",
		},
		{
			name:      "digits and punctuation stripped",
			key:       "tag2!",
			value:     "v1.0",
			wantKey:   "tag",
			wantValue: "v",
		},
		{
			name:      "empty",
			key:       "",
			value:     "",
			wantKey:   "",
			wantValue: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotKey, gotValue := NormalizeTag(tt.key, tt.value)
			if gotKey != tt.wantKey || gotValue != tt.wantValue {
				t.Errorf("NormalizeTag(%q, %q) = (%q, %q), want (%q, %q)",
					tt.key, tt.value, gotKey, gotValue, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestTags_InsertLastWriteWins(t *testing.T) {
	t.Parallel()

	tags := NewTags()
	tags.Insert("Plan", "free")
	tags.Insert("plan", "pro")
	tags.Insert("PLAN_", "Enterprise")

	if tags.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tags.Len())
	}
	got, ok := tags.Get("plan")
	if !ok || got != "enterprise" {
		t.Errorf("Get(plan) = %q, %v, want enterprise, true", got, ok)
	}
}

func TestTags_ZeroValueUsable(t *testing.T) {
	t.Parallel()

	var tags Tags
	if !tags.IsZero() {
		t.Error("zero Tags is not zero")
	}
	tags.Insert("Region", "EU West")

	want := map[string]string{"region": "eu-west"}
	if diff := cmp.Diff(want, tags.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}

func TestTags_MapIsCopy(t *testing.T) {
	t.Parallel()

	tags := NewTags()
	tags.Insert("a", "b")
	m := tags.Map()
	m["a"] = "changed"

	if got, _ := tags.Get("a"); got != "b" {
		t.Errorf("Get(a) = %q after mutating Map() copy, want b", got)
	}
}

func TestTags_CopiesShareStorage(t *testing.T) {
	t.Parallel()

	a := NewTags()
	a.Insert("env", "prod")
	b := a
	b.Insert("region", "eu")

	if a.Len() != 2 {
		t.Errorf("a.Len() = %d after inserting through a copy, want 2", a.Len())
	}

	client, _ := NewClient("token", "proj")
	builder := client.Event("c", "e")
	builder.WithTag("env", "prod")
	snapshot := builder.Payload()
	shared := snapshot.Tags
	shared.Insert("extra", "x")

	if builder.Payload().Tags.Len() != 1 {
		t.Errorf("builder tags changed through a payload copy: %v", builder.Payload().Tags.Map())
	}
}

func TestTags_JSON(t *testing.T) {
	t.Parallel()

	tags := NewTags()
	tags.Insert("User_Name", "test-username-id")

	data, err := json.Marshal(tags)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"username":"test-username-id"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var decoded Tags
	if err := json.Unmarshal([]byte(`{"Some Key":"Some_Value"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(map[string]string{"some-key": "somevalue"}, decoded.Map()); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}
