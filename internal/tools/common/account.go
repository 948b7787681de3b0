package common

import (
	"github.com/teemow/gmailmcp/internal/google"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
	"github.com/teemow/gmailmcp/internal/tools/registry"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

// AccountParam is the optional argument every operation accepts.
const AccountParam = "account"

// AccountParameter declares the account argument with its default.
func AccountParameter() registry.Parameter {
	return registry.String(AccountParam,
		registry.Default(server.DefaultAccount),
		registry.Describe("Account name (default: 'default')"))
}

// GetAccountFromArgs extracts the account name from a raw argument bag.
// It falls back to "default" when the argument is missing, empty or not a
// string; it is used for metrics and audit before validation has run.
func GetAccountFromArgs(args map[string]any) string {
	if accountVal, ok := args[AccountParam].(string); ok && accountVal != "" {
		return accountVal
	}
	return server.DefaultAccount
}

// Account returns the validated account argument. Names that cannot be used
// as token keys are rejected with VALIDATION_ERROR.
func Account(args validate.Arguments) (string, error) {
	account := args.String(AccountParam)
	if account == "" {
		account = server.DefaultAccount
	}
	if err := google.ValidateAccountName(account); err != nil {
		return "", dispatch.NewError(dispatch.CodeValidation, err)
	}
	return account, nil
}
