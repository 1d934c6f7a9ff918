package logsnag

import (
	"context"
	"maps"
	"net/http"
	"slices"
)

// LogBuilder accumulates the optional fields of one pending event log.
// Setters mutate the pending payload and return the same builder.
// A builder must not be shared between goroutines.
type LogBuilder struct {
	client *Client
	log    Log
}

// Event starts a pending event log for channel.
func (c *Client) Event(channel, event string) *LogBuilder {
	return &LogBuilder{
		client: c,
		log: Log{
			Project: c.project,
			Channel: channel,
			Event:   event,
		},
	}
}

// WithDescription sets the description.
func (b *LogBuilder) WithDescription(description string) *LogBuilder {
	b.log.Description = description
	return b
}

// WithIcon sets the icon, usually a single emoji.
func (b *LogBuilder) WithIcon(icon string) *LogBuilder {
	b.log.Icon = icon
	return b
}

// WithNotify sets the notify flag. Calling it with false still sends the
// field.
func (b *LogBuilder) WithNotify(notify bool) *LogBuilder {
	b.log.Notify = &notify
	return b
}

// WithTag normalizes and adds a tag. Later tags with the same normalized
// key replace earlier ones.
func (b *LogBuilder) WithTag(key, value string) *LogBuilder {
	b.log.Tags.Insert(key, value)
	return b
}

// WithTags adds every pair in tags, as WithTag does. Keys are inserted in
// sorted order, so when several keys normalize to the same tag the
// lexically greatest one wins.
func (b *LogBuilder) WithTags(tags map[string]string) *LogBuilder {
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		b.log.Tags.Insert(k, tags[k])
	}
	return b
}

// Payload returns a copy of the pending event log.
func (b *LogBuilder) Payload() Log {
	log := b.log
	log.Tags = b.log.Tags.clone()
	if b.log.Notify != nil {
		notify := *b.log.Notify
		log.Notify = &notify
	}
	return log
}

// Publish sends the pending event log. The builder stays usable; publishing
// again resends the same payload.
func (b *LogBuilder) Publish(ctx context.Context) (*http.Response, error) {
	return b.client.sendLog(ctx, b.Payload())
}

// InsightBuilder accumulates the optional fields of one pending insight.
type InsightBuilder struct {
	client  *Client
	insight Insight
}

// Insight starts a pending insight.
func (c *Client) Insight(title string, value InsightValue) *InsightBuilder {
	return &InsightBuilder{
		client: c,
		insight: Insight{
			Project: c.project,
			Title:   title,
			Value:   value,
		},
	}
}

// WithIcon sets the icon, usually a single emoji.
func (b *InsightBuilder) WithIcon(icon string) *InsightBuilder {
	b.insight.Icon = icon
	return b
}

// Payload returns a copy of the pending insight.
func (b *InsightBuilder) Payload() Insight {
	return b.insight
}

// Publish sends the pending insight.
func (b *InsightBuilder) Publish(ctx context.Context) (*http.Response, error) {
	return b.client.sendInsight(ctx, b.insight)
}
