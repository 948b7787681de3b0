package gmail

import (
	"strings"
)

// SentMessage identifies a message accepted by Gmail.
type SentMessage struct {
	ID       string `json:"messageId"`
	ThreadID string `json:"threadId"`
}

// SearchOptions selects messages for Search.
type SearchOptions struct {
	Query            string
	MaxResults       int64
	LabelIDs         []string
	IncludeSpamTrash bool
}

// MessageSummary is the search-result view of a message.
type MessageSummary struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	Date     string   `json:"date"`
	Snippet  string   `json:"snippet"`
	LabelIDs []string `json:"labelIds"`
}

// MessageDetail is a single message with decoded headers and body.
type MessageDetail struct {
	ID           string            `json:"id"`
	ThreadID     string            `json:"threadId"`
	LabelIDs     []string          `json:"labelIds"`
	Snippet      string            `json:"snippet"`
	Headers      map[string]string `json:"headers,omitempty"`
	Body         string            `json:"body,omitempty"`
	SizeEstimate int64             `json:"sizeEstimate"`
	InternalDate int64             `json:"internalDate"`
	Attachments  []AttachmentInfo  `json:"attachments,omitempty"`
}

// Header returns the value of the named header, matched case-insensitively.
func (m *MessageDetail) Header(name string) string {
	if v, ok := m.Headers[name]; ok {
		return v
	}
	for k, v := range m.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Thread is a conversation and its messages in chronological order.
type Thread struct {
	ID       string          `json:"threadId"`
	Messages []MessageDetail `json:"messages"`
}

// Draft identifies a stored draft.
type Draft struct {
	ID        string `json:"draftId"`
	MessageID string `json:"messageId"`
	ThreadID  string `json:"threadId,omitempty"`
}

// Label is a Gmail label.
type Label struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	MessageListVisibility string `json:"messageListVisibility,omitempty"`
	LabelListVisibility   string `json:"labelListVisibility,omitempty"`
}

// LabelSpec describes a label to create.
type LabelSpec struct {
	Name                  string
	MessageListVisibility string
	LabelListVisibility   string
}

// Profile summarizes the mailbox.
type Profile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int64  `json:"messagesTotal"`
	ThreadsTotal  int64  `json:"threadsTotal"`
	HistoryID     uint64 `json:"historyId"`
}

// Attachment is file content to include in an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentInfo describes an attachment part of a received message.
type AttachmentInfo struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachmentId"`
	PartID       string `json:"partId,omitempty"`
}
