package logsnag

// Log is the event log payload sent to the log endpoint.
type Log struct {
	// Project is the LogSnag project name. Required.
	Project string `json:"project"`
	// Channel groups related events within the project. Required.
	Channel string `json:"channel"`
	// Event is the name of the occurrence. Required.
	Event string `json:"event"`
	// Description is a human-readable detail line. Optional.
	Description string `json:"description,omitempty"`
	// Icon is a single emoji shown next to the event. Optional.
	Icon string `json:"icon,omitempty"`
	// Notify requests a push notification. Optional; nil leaves it unset.
	Notify *bool `json:"notify,omitempty"`
	// Tags are normalized key/value annotations. Optional.
	Tags Tags `json:"tags,omitzero"`
}

// Insight is the insight payload sent to the insight endpoint.
type Insight struct {
	// Project is the LogSnag project name. Required.
	Project string `json:"project"`
	// Title is the insight name shown on the dashboard. Required.
	Title string `json:"title"`
	// Value is the displayed value. Required.
	Value InsightValue `json:"value"`
	// Icon is a single emoji shown next to the insight. Optional.
	Icon string `json:"icon,omitempty"`
}

// LogOptions holds the optional fields of Client.Publish.
type LogOptions struct {
	Description string
	Icon        string
	Notify      *bool
	Tags        Tags
}

// Bool returns a pointer to b, for LogOptions.Notify.
func Bool(b bool) *bool {
	return &b
}
