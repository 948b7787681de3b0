package google

import (
	gmail "google.golang.org/api/gmail/v1"
)

// GmailScopes are the OAuth scopes requested for the full operation catalog:
//   - modify: read, label, trash and delete messages
//   - send: send mail and create drafts
//   - labels: create and delete labels
//   - settings.basic: manage filters
var GmailScopes = []string{
	gmail.GmailModifyScope,
	gmail.GmailSendScope,
	gmail.GmailLabelsScope,
	gmail.GmailSettingsBasicScope,
}

// ReadOnlyScopes are requested when the server runs in read-only mode.
var ReadOnlyScopes = []string{
	gmail.GmailReadonlyScope,
}
