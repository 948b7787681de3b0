package instrumentation

import "strings"

// ExtractUserDomain reduces an email-like account name to its domain so it
// can be logged without PII. Plain account names such as "work" are returned
// unchanged since they carry no personal data.
//
//	ExtractUserDomain("jane@example.com") // "example.com"
//	ExtractUserDomain("work")             // "work"
//	ExtractUserDomain("")                 // "unknown"
func ExtractUserDomain(account string) string {
	if account == "" {
		return "unknown"
	}
	at := strings.LastIndex(account, "@")
	if at < 0 {
		return account
	}
	if domain := account[at+1:]; domain != "" {
		return domain
	}
	return "unknown"
}

// Operation types for Gmail API metrics and spans.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationSend   = "send"
	OperationSearch = "search"
	OperationPost   = "post"
)
