package gmail_tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

func (t *toolset) handleListAttachments(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	atts, err := svc.ListAttachments(ctx, args.String("messageId"))
	if err != nil {
		return nil, err
	}
	if atts == nil {
		atts = []gmail.AttachmentInfo{}
	}
	return map[string]any{
		"count":       len(atts),
		"attachments": atts,
	}, nil
}

// handleDownloadAttachment writes the attachment to savePath when given and
// returns its content as standard base64 otherwise. A savePath naming an
// existing directory receives the file under its sanitized original name.
func (t *toolset) handleDownloadAttachment(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	messageID, attachmentID := args.String("messageId"), args.String("attachmentId")
	data, err := svc.GetAttachment(ctx, messageID, attachmentID)
	if err != nil {
		return nil, err
	}

	savePath := args.String("savePath")
	if savePath == "" {
		return map[string]any{
			"size": len(data),
			"data": base64.StdEncoding.EncodeToString(data),
		}, nil
	}

	savePath = filepath.Clean(savePath)
	if info, err := os.Stat(savePath); err == nil && info.IsDir() {
		name, err := attachmentFilename(ctx, svc, messageID, attachmentID)
		if err != nil {
			return nil, err
		}
		savePath = filepath.Join(savePath, name)
	}
	if err := os.MkdirAll(filepath.Dir(savePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", savePath, err)
	}
	if err := os.WriteFile(savePath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}
	return map[string]any{
		"size":    len(data),
		"savedTo": savePath,
	}, nil
}

// attachmentFilename looks up the filename Gmail reports for attachmentID.
// Attachments without a usable name are saved as attachment-<messageId>.
func attachmentFilename(ctx context.Context, svc MailService, messageID, attachmentID string) (string, error) {
	atts, err := svc.ListAttachments(ctx, messageID)
	if err != nil {
		return "", err
	}
	for _, a := range atts {
		if a.AttachmentID != attachmentID {
			continue
		}
		name := gmail.SanitizeFilename(a.Filename)
		if name != "" && name != "." {
			return name, nil
		}
	}
	return gmail.SanitizeFilename("attachment-" + messageID), nil
}
