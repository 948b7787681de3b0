package gmail_tools

import (
	"github.com/teemow/gmailmcp/internal/tools/common"
	"github.com/teemow/gmailmcp/internal/tools/registry"
)

// Operation names.
const (
	OpAuthURL    = "gmail_auth_url"
	OpAuthToken  = "gmail_auth_token"
	OpAuthStatus = "gmail_auth_status"
	OpGetProfile = "gmail_get_profile"

	OpSendEmail   = "gmail_send_email"
	OpCreateDraft = "gmail_create_draft"
	OpReplyEmail  = "gmail_reply_to_email"

	OpSearchEmails = "gmail_search_emails"
	OpGetEmail     = "gmail_get_email"
	OpGetThread    = "gmail_get_thread"

	OpModifyLabels      = "gmail_modify_labels"
	OpBatchModifyLabels = "gmail_batch_modify_labels"
	OpMarkRead          = "gmail_mark_read"
	OpMarkUnread        = "gmail_mark_unread"
	OpArchiveEmails     = "gmail_archive_emails"
	OpTrashEmails       = "gmail_trash_emails"
	OpDeleteEmails      = "gmail_delete_emails"

	OpListAttachments    = "gmail_list_attachments"
	OpDownloadAttachment = "gmail_download_attachment"

	OpListLabels  = "gmail_list_labels"
	OpCreateLabel = "gmail_create_label"
	OpDeleteLabel = "gmail_delete_label"

	OpListFilters  = "gmail_list_filters"
	OpGetFilter    = "gmail_get_filter"
	OpCreateFilter = "gmail_create_filter"
	OpDeleteFilter = "gmail_delete_filter"
)

var (
	messageFormats         = []string{"full", "metadata", "minimal"}
	messageListVisibility  = []string{"show", "hide"}
	labelListVisibility    = []string{"labelShow", "labelShowIfUnread", "labelHide"}
	describeMessageIDs     = registry.Describe("Message ID or array of message IDs")
	describeAddLabelIDs    = registry.Describe("Label IDs to add")
	describeRemoveLabelIDs = registry.Describe("Label IDs to remove")
)

func op(name, summary string, params ...registry.Parameter) registry.OperationDescriptor {
	return registry.OperationDescriptor{
		Name:       name,
		Summary:    summary,
		Parameters: append(params, common.AccountParameter()),
	}
}

func readOnly(d registry.OperationDescriptor) registry.OperationDescriptor {
	d.ReadOnly = true
	return d
}

func destructive(d registry.OperationDescriptor) registry.OperationDescriptor {
	d.Destructive = true
	return d
}

func composeParams() []registry.Parameter {
	return []registry.Parameter{
		registry.StringOrList("to", registry.Required(), registry.Describe("Recipient email address(es)")),
		registry.String("subject", registry.Required(), registry.Describe("Email subject")),
		registry.String("body", registry.Required(), registry.Describe("Email body")),
		registry.StringOrList("cc", registry.Describe("CC recipient(s)")),
		registry.StringOrList("bcc", registry.Describe("BCC recipient(s)")),
		registry.Boolean("html", registry.Default(false), registry.Describe("Send the body as HTML")),
		registry.String("htmlBody", registry.Describe("HTML alternative of body; sends multipart/alternative")),
		registry.StringList("attachments", registry.Describe("Paths of local files to attach")),
	}
}

func batchOp(name, summary string) registry.OperationDescriptor {
	return op(name, summary, registry.StringOrList("messageIds", registry.Required(), describeMessageIDs))
}

// Descriptors returns the Gmail operation catalog in advertisement order.
func Descriptors() []registry.OperationDescriptor {
	return []registry.OperationDescriptor{
		readOnly(op(OpAuthURL, "Get the Google OAuth URL to authorize Gmail access")),
		readOnly(op(OpAuthToken, "Complete Gmail authorization with the code from the OAuth redirect",
			registry.String("code", registry.Required(), registry.Describe("Authorization code or the full redirect URL")))),
		readOnly(op(OpAuthStatus, "Check whether Gmail access is authorized")),
		readOnly(op(OpGetProfile, "Get the Gmail profile of the authenticated user")),

		op(OpSendEmail, "Send an email", composeParams()...),
		op(OpCreateDraft, "Create a draft email",
			append(composeParams(), registry.String("threadId", registry.Describe("Thread to attach the draft to")))...),
		op(OpReplyEmail, "Reply to an email in its thread",
			registry.String("messageId", registry.Required(), registry.Describe("ID of the message to reply to")),
			registry.String("body", registry.Required(), registry.Describe("Reply body")),
			registry.StringOrList("cc", registry.Describe("CC recipient(s)")),
			registry.StringOrList("bcc", registry.Describe("BCC recipient(s)")),
			registry.Boolean("html", registry.Default(false), registry.Describe("Send the body as HTML"))),

		readOnly(op(OpSearchEmails, "Search emails with a Gmail query",
			registry.String("query", registry.Required(), registry.Describe("Gmail search query (e.g., 'in:inbox is:unread')")),
			registry.Number("maxResults", registry.Between(1, 500), registry.Default(10.0), registry.Describe("Maximum number of results")),
			registry.StringList("labelIds", registry.Describe("Only return messages with all of these labels")),
			registry.Boolean("includeSpamTrash", registry.Default(false), registry.Describe("Include messages from SPAM and TRASH")))),
		readOnly(op(OpGetEmail, "Get an email by ID",
			registry.String("messageId", registry.Required(), registry.Describe("Message ID")),
			registry.Enum("format", messageFormats, registry.Default("full"), registry.Describe("Response format")))),
		readOnly(op(OpGetThread, "Get all messages of a thread",
			registry.String("threadId", registry.Required(), registry.Describe("Thread ID")))),

		op(OpModifyLabels, "Add or remove labels on an email",
			registry.String("messageId", registry.Required(), registry.Describe("Message ID")),
			registry.StringList("addLabelIds", describeAddLabelIDs),
			registry.StringList("removeLabelIds", describeRemoveLabelIDs)),
		op(OpBatchModifyLabels, "Add or remove labels on several emails",
			registry.StringOrList("messageIds", registry.Required(), describeMessageIDs),
			registry.StringList("addLabelIds", describeAddLabelIDs),
			registry.StringList("removeLabelIds", describeRemoveLabelIDs)),
		batchOp(OpMarkRead, "Mark emails as read"),
		batchOp(OpMarkUnread, "Mark emails as unread"),
		batchOp(OpArchiveEmails, "Archive emails by removing them from the inbox"),
		batchOp(OpTrashEmails, "Move emails to the trash"),
		destructive(batchOp(OpDeleteEmails, "Permanently delete emails")),

		readOnly(op(OpListAttachments, "List the attachments of an email",
			registry.String("messageId", registry.Required(), registry.Describe("Message ID")))),
		readOnly(op(OpDownloadAttachment, "Download an attachment, either to a file or as base64",
			registry.String("messageId", registry.Required(), registry.Describe("Message ID")),
			registry.String("attachmentId", registry.Required(), registry.Describe("Attachment ID from gmail_list_attachments")),
			registry.String("savePath", registry.Describe("Write the attachment to this file, or into this existing directory under its original name")))),

		readOnly(op(OpListLabels, "List all labels")),
		op(OpCreateLabel, "Create a label",
			registry.String("name", registry.Required(), registry.Describe("Label name")),
			registry.Enum("messageListVisibility", messageListVisibility, registry.Default("show")),
			registry.Enum("labelListVisibility", labelListVisibility, registry.Default("labelShow"))),
		destructive(op(OpDeleteLabel, "Delete a label",
			registry.String("labelId", registry.Required(), registry.Describe("Label ID")))),

		readOnly(op(OpListFilters, "List all filters")),
		readOnly(op(OpGetFilter, "Get a filter by ID",
			registry.String("filterId", registry.Required(), registry.Describe("Filter ID")))),
		op(OpCreateFilter, "Create a filter that labels or forwards matching emails",
			registry.String("from", registry.Describe("Match sender")),
			registry.String("to", registry.Describe("Match recipient")),
			registry.String("subject", registry.Describe("Match subject")),
			registry.String("query", registry.Describe("Match a Gmail query")),
			registry.Boolean("hasAttachment", registry.Describe("Match messages with attachments")),
			registry.StringList("addLabelIds", describeAddLabelIDs),
			registry.StringList("removeLabelIds", describeRemoveLabelIDs),
			registry.String("forward", registry.Describe("Forward matches to this address"))),
		destructive(op(OpDeleteFilter, "Delete a filter",
			registry.String("filterId", registry.Required(), registry.Describe("Filter ID")))),
	}
}
