// Package logsnag provides a Go SDK for the LogSnag event tracking service.
//
// The SDK publishes event logs and insights to a LogSnag project.
//
// Basic usage:
//
//	client, err := logsnag.NewClient(os.Getenv("LOGSNAG_API_KEY"), "my-project")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Event("signups", "User Joined").
//	    WithIcon("🎉").
//	    WithNotify(true).
//	    WithTag("plan", "pro").
//	    Publish(ctx)
//
// Insights carry a single string, integer or boolean value:
//
//	_, err = client.Insight("Status", logsnag.StringValue("online")).
//	    WithIcon("🟢").
//	    Publish(ctx)
//
// The client never retries and never logs. Every failure is returned to the
// caller as a *SerializationError, *NetworkError or *APIError.
package logsnag

// Version is the SDK version.
const Version = "0.2.0"
