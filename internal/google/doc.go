// Package google provides OAuth2 authentication and token management for the
// Gmail API.
//
// The Authenticator runs the manual authorization-code flow: AuthCodeURL
// returns a consent URL, and Exchange accepts the code (or the whole redirect
// URL) the user pastes back. Tokens are persisted per account through a
// TokenStore, either FileTokenStore (JSON files with mode 0600) or
// KeyringTokenStore (the platform keyring). Refreshed tokens are written back
// to the store automatically.
package google
