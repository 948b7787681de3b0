// Package gmail provides a rate-limited client for the Gmail REST API and the
// per-account Service used by the MCP tools.
//
// Client wraps gmail/v1 for one account. Every call waits on a token-bucket
// limiter, runs through a circuit breaker and is recorded as an OpenTelemetry
// span and metric. Client errors (4xx other than 429) do not count towards
// opening the breaker. Calls are never retried.
//
// Service adds lazy construction on top of Client: the first call loads the
// account's OAuth token through an Authenticator, and ErrNotAuthenticated is
// returned until a token exists.
//
// Outgoing mail is built with Compose (a plain RFC 2822 message),
// ComposeAlternative (plain and HTML bodies) or ComposeWithAttachments
// (multipart/mixed) and encoded with EncodeRaw. Header values containing a
// line break are rejected with ErrHeaderInjection:
//
//	raw, err := gmail.Build(&gmail.Message{
//	    To:      []string{"alice@example.com"},
//	    Subject: "Status",
//	    Body:    "All green.",
//	})
//	if err != nil {
//	    return err
//	}
//	sent, err := svc.Send(ctx, gmail.EncodeRaw(raw), "")
package gmail
