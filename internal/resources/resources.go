package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/server"
)

// Resource URIs.
const (
	AccountsURI = "gmail://accounts"
	ProfileURI  = "gmail://profile"
)

const mimeJSON = "application/json"

// ProfileService is the part of the mail collaborator resources read.
type ProfileService interface {
	IsAuthenticated() bool
	GetProfile(ctx context.Context) (*gmail.Profile, error)
}

// Source resolves the accounts in use and their services.
type Source struct {
	Accounts func() []string
	Service  func(account string) ProfileService
}

// ServerSource reads accounts and services from sc.
func ServerSource(sc *server.ServerContext) Source {
	return Source{
		Accounts: sc.Accounts,
		Service: func(account string) ProfileService {
			return sc.GmailService(account)
		},
	}
}

// Register adds the account resources to s. The server must be created with
// resource capabilities enabled.
func Register(s *mcpserver.MCPServer, src Source) {
	s.AddResource(mcp.NewResource(AccountsURI, "Gmail Accounts",
		mcp.WithResourceDescription("Accounts known to this server and their authorization state"),
		mcp.WithMIMEType(mimeJSON),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request.Params.URI, accountsDocument(src))
	})

	s.AddResource(mcp.NewResource(ProfileURI, "Gmail Profile",
		mcp.WithResourceDescription("Gmail profile of the default account"),
		mcp.WithMIMEType(mimeJSON),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc, err := profileDocument(ctx, src, server.DefaultAccount)
		if err != nil {
			return nil, err
		}
		return jsonContents(request.Params.URI, doc)
	})
}

type accountState struct {
	Account       string `json:"account"`
	Authenticated bool   `json:"authenticated"`
}

// accountsDocument always includes the default account.
func accountsDocument(src Source) map[string]any {
	names := map[string]bool{server.DefaultAccount: true}
	for _, a := range src.Accounts() {
		names[a] = true
	}
	sorted := make([]string, 0, len(names))
	for a := range names {
		sorted = append(sorted, a)
	}
	sort.Strings(sorted)

	accounts := make([]accountState, 0, len(sorted))
	for _, a := range sorted {
		accounts = append(accounts, accountState{
			Account:       a,
			Authenticated: src.Service(a).IsAuthenticated(),
		})
	}
	return map[string]any{"accounts": accounts}
}

func profileDocument(ctx context.Context, src Source, account string) (map[string]any, error) {
	svc := src.Service(account)
	if !svc.IsAuthenticated() {
		return nil, fmt.Errorf("account %s: %w", account, gmail.ErrNotAuthenticated)
	}
	profile, err := svc.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return map[string]any{
		"account":       account,
		"emailAddress":  profile.EmailAddress,
		"messagesTotal": profile.MessagesTotal,
		"threadsTotal":  profile.ThreadsTotal,
		"historyId":     profile.HistoryID,
	}, nil
}

func jsonContents(uri string, doc map[string]any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}
