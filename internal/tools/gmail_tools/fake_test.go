package gmail_tools

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/api/googleapi"

	"github.com/teemow/gmailmcp/internal/gmail"
)

type labelCall struct {
	ID     string
	Add    []string
	Remove []string
}

// fakeMail records calls and fails for the IDs listed in failIDs.
type fakeMail struct {
	mu sync.Mutex

	authenticated bool
	authURL       string
	exchanged     []string
	exchangeErr   error

	sentRaw      []string
	sentThreads  []string
	drafts       []string
	searches     []gmail.SearchOptions
	messages     map[string]*gmail.MessageDetail
	labelCalls   []labelCall
	trashed      []string
	deleted      []string
	createdLabel *gmail.LabelSpec
	filters      []gmail.Filter
	attachment   []byte
	attachments  []gmail.AttachmentInfo

	failIDs map[string]bool
	err     error
}

func newFakeMail() *fakeMail {
	return &fakeMail{
		authenticated: true,
		authURL:       "https://accounts.google.com/o/oauth2/auth?state=default",
		messages:      map[string]*gmail.MessageDetail{},
		failIDs:       map[string]bool{},
	}
}

func notFound(id string) error {
	return &googleapi.Error{Code: http.StatusNotFound, Message: fmt.Sprintf("message %s not found", id)}
}

func (f *fakeMail) IsAuthenticated() bool { return f.authenticated }
func (f *fakeMail) AuthURL() string       { return f.authURL }

func (f *fakeMail) ExchangeCode(_ context.Context, code string) error {
	if f.exchangeErr != nil {
		return f.exchangeErr
	}
	f.exchanged = append(f.exchanged, code)
	f.authenticated = true
	return nil
}

func (f *fakeMail) Send(_ context.Context, raw, threadID string) (*gmail.SentMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sentRaw = append(f.sentRaw, raw)
	f.sentThreads = append(f.sentThreads, threadID)
	if threadID == "" {
		threadID = "t-new"
	}
	return &gmail.SentMessage{ID: "sent-1", ThreadID: threadID}, nil
}

func (f *fakeMail) CreateDraft(_ context.Context, raw, threadID string) (*gmail.Draft, error) {
	f.drafts = append(f.drafts, raw)
	return &gmail.Draft{ID: "d-1", MessageID: "m-d1", ThreadID: threadID}, nil
}

func (f *fakeMail) Search(_ context.Context, opts gmail.SearchOptions) ([]gmail.MessageSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.searches = append(f.searches, opts)
	return []gmail.MessageSummary{{ID: "m1", Subject: "Hello"}}, nil
}

func (f *fakeMail) GetMessage(_ context.Context, id, _ string) (*gmail.MessageDetail, error) {
	if m, ok := f.messages[id]; ok {
		return m, nil
	}
	return nil, notFound(id)
}

func (f *fakeMail) GetThread(_ context.Context, id string) (*gmail.Thread, error) {
	return &gmail.Thread{ID: id, Messages: []gmail.MessageDetail{{ID: "m1"}, {ID: "m2"}}}, nil
}

func (f *fakeMail) ModifyLabels(_ context.Context, id string, add, remove []string) (*gmail.MessageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labelCalls = append(f.labelCalls, labelCall{ID: id, Add: add, Remove: remove})
	if f.failIDs[id] {
		return nil, notFound(id)
	}
	return &gmail.MessageDetail{ID: id, LabelIDs: add}, nil
}

func (f *fakeMail) TrashMessage(_ context.Context, id string) error {
	if f.failIDs[id] {
		return notFound(id)
	}
	f.trashed = append(f.trashed, id)
	return nil
}

func (f *fakeMail) DeleteMessage(_ context.Context, id string) error {
	if f.failIDs[id] {
		return notFound(id)
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMail) ListLabels(context.Context) ([]gmail.Label, error) {
	return []gmail.Label{{ID: "INBOX", Name: "INBOX", Type: "system"}, {ID: "Label_1", Name: "Work", Type: "user"}}, nil
}

func (f *fakeMail) CreateLabel(_ context.Context, spec gmail.LabelSpec) (*gmail.Label, error) {
	f.createdLabel = &spec
	return &gmail.Label{ID: "Label_9", Name: spec.Name}, nil
}

func (f *fakeMail) DeleteLabel(_ context.Context, id string) error {
	if f.failIDs[id] {
		return notFound(id)
	}
	return nil
}

func (f *fakeMail) GetProfile(context.Context) (*gmail.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gmail.Profile{EmailAddress: "me@example.com", MessagesTotal: 42, ThreadsTotal: 7, HistoryID: 99}, nil
}

func (f *fakeMail) ListAttachments(_ context.Context, messageID string) ([]gmail.AttachmentInfo, error) {
	if f.attachments != nil {
		return f.attachments, nil
	}
	return []gmail.AttachmentInfo{{Filename: "a.pdf", MimeType: "application/pdf", Size: 3, AttachmentID: "att-1"}}, nil
}

func (f *fakeMail) GetAttachment(_ context.Context, _, attachmentID string) ([]byte, error) {
	if f.failIDs[attachmentID] {
		return nil, notFound(attachmentID)
	}
	return f.attachment, nil
}

func (f *fakeMail) ListFilters(context.Context) ([]gmail.Filter, error) {
	return f.filters, nil
}

func (f *fakeMail) GetFilter(_ context.Context, id string) (*gmail.Filter, error) {
	for _, flt := range f.filters {
		if flt.ID == id {
			return &flt, nil
		}
	}
	return nil, notFound(id)
}

func (f *fakeMail) CreateFilter(_ context.Context, criteria gmail.FilterCriteria, action gmail.FilterAction) (*gmail.Filter, error) {
	flt := gmail.Filter{ID: fmt.Sprintf("f-%d", len(f.filters)+1), Criteria: criteria, Action: action}
	f.filters = append(f.filters, flt)
	return &flt, nil
}

func (f *fakeMail) DeleteFilter(_ context.Context, id string) error {
	if _, err := f.GetFilter(context.Background(), id); err != nil {
		return err
	}
	return nil
}
