package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
	MaxAttachmentSize = 25 * 1024 * 1024
)

// ExtractAttachments collects every part carrying both a filename and an
// attachment ID. Parts are visited depth-first, parent before children, in
// sibling order; children of skipped parts are still visited.
func ExtractAttachments(root *gmail.MessagePart) []AttachmentInfo {
	var out []AttachmentInfo
	walkParts(root, func(part *gmail.MessagePart) {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
			return
		}
		out = append(out, AttachmentInfo{
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
			AttachmentID: part.Body.AttachmentId,
			PartID:       part.PartId,
		})
	})
	return out
}

// MessageBody returns the decoded text/plain body of a message, falling back
// to text/html. It returns "" when neither is present.
func MessageBody(root *gmail.MessagePart) string {
	for _, mimeType := range []string{"text/plain", "text/html"} {
		var data string
		walkParts(root, func(part *gmail.MessagePart) {
			if data == "" && part.MimeType == mimeType && part.Filename == "" &&
				part.Body != nil && part.Body.Data != "" {
				data = part.Body.Data
			}
		})
		if data == "" {
			continue
		}
		decoded, err := decodeBase64(data)
		if err != nil {
			continue
		}
		return string(decoded)
	}
	return ""
}

// ListAttachments returns the attachments of a message.
func (c *Client) ListAttachments(ctx context.Context, messageID string) ([]AttachmentInfo, error) {
	msg, err := c.getRaw(ctx, messageID, FormatFull)
	if err != nil {
		return nil, err
	}
	return ExtractAttachments(msg.Payload), nil
}

// GetAttachment downloads and decodes one attachment.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	var body *gmail.MessagePartBody
	err := c.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		body, err = c.svc.Users.Messages.Attachments.Get(userID, messageID, attachmentID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if body.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrAttachmentTooLarge, body.Size, MaxAttachmentSize)
	}

	data, err := decodeBase64(body.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}
	return data, nil
}

// decodeBase64 decodes Gmail body data, which is base64url with or without
// padding. Standard encoding is accepted as a fallback.
func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// SanitizeFilename sanitizes a filename to prevent path traversal attacks
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return filename
}
