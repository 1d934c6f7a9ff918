package logsnag

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogBuilder_Chaining(t *testing.T) {
	t.Parallel()

	client, _ := NewClient("token", "proj")

	b := client.Event("test", "Test Event")
	same := b.WithNotify(true).
		WithDescription("This is a test description.").
		WithIcon("🥳").
		WithTag("tAg-one", "tag-value").
		WithTag("tagtwo", "tag-2-value")
	if same != b {
		t.Fatal("setters returned a different builder")
	}

	got := b.Payload()
	want := map[string]string{"tag-one": "tag-value", "tagtwo": "tag--value"}
	if diff := cmp.Diff(want, got.Tags.Map()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if got.Notify == nil || !*got.Notify {
		t.Errorf("Notify = %v, want true", got.Notify)
	}
	if got.Project != "proj" || got.Channel != "test" || got.Event != "Test Event" {
		t.Errorf("required fields = %q/%q/%q", got.Project, got.Channel, got.Event)
	}
}

func TestLogBuilder_PayloadIsSnapshot(t *testing.T) {
	t.Parallel()

	client, _ := NewClient("token", "proj")
	b := client.Event("c", "e").WithTag("a", "one")

	snapshot := b.Payload()
	b.WithTag("a", "two").WithTag("b", "three")

	if got, _ := snapshot.Tags.Get("a"); got != "one" {
		t.Errorf("snapshot tag a = %q, want one", got)
	}
	if snapshot.Tags.Len() != 1 {
		t.Errorf("snapshot Len() = %d, want 1", snapshot.Tags.Len())
	}
}

func TestLogBuilder_WithTags(t *testing.T) {
	t.Parallel()

	client, _ := NewClient("token", "proj")
	got := client.Event("c", "e").WithTags(map[string]string{"Env": "Prod", "Region": "EU West"}).Payload()

	want := map[string]string{"env": "prod", "region": "eu-west"}
	if diff := cmp.Diff(want, got.Tags.Map()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestLogBuilder_WithTagsCollidingKeys(t *testing.T) {
	t.Parallel()

	client, _ := NewClient("token", "proj")
	tags := map[string]string{"user_id": "first", "User ID": "second", "userid": "third"}

	for range 20 {
		got := client.Event("c", "e").WithTags(tags).Payload()
		if v, _ := got.Tags.Get("userid"); v != "third" {
			t.Fatalf("userid = %q, want third (greatest key wins)", v)
		}
		if v, _ := got.Tags.Get("user-id"); v != "second" {
			t.Fatalf("user-id = %q, want second", v)
		}
	}
}

func TestLogBuilder_PublishTwiceResends(t *testing.T) {
	t.Parallel()

	server, requests := newTestServer(t, http.StatusOK, `{}`)
	client, _ := NewClient("token", "proj", WithBaseURL(server.URL))

	b := client.Event("deploys", "Deployed").WithNotify(false)
	for range 2 {
		if _, err := b.Publish(context.Background()); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	first, second := <-requests, <-requests
	if diff := cmp.Diff(first.body, second.body); diff != "" {
		t.Errorf("resent payload differs (-first +second):\n%s", diff)
	}
	if first.body["notify"] != false {
		t.Errorf("notify = %v, want explicit false", first.body["notify"])
	}
}

func TestInsightBuilder_Publish(t *testing.T) {
	t.Parallel()

	server, requests := newTestServer(t, http.StatusOK, `{}`)
	client, _ := NewClient("token", "proj", WithBaseURL(server.URL))

	_, err := client.Insight("status", StringValue("online")).WithIcon("🟢").Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := <-requests
	want := map[string]any{"project": "proj", "title": "status", "value": "online", "icon": "🟢"}
	if diff := cmp.Diff(want, got.body); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if got.path != "/v1/insight" {
		t.Errorf("path = %s, want /v1/insight", got.path)
	}
}

func TestInsightBuilder_APIError(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, http.StatusBadRequest, `{"message":"title is required"}`)
	client, _ := NewClient("token", "proj", WithBaseURL(server.URL))

	_, err := client.Insight("", BoolValue(true)).Publish(context.Background())
	if !IsAPIError(err) {
		t.Fatalf("Publish() error = %v, want *APIError", err)
	}
}
