// Package config loads the gmailmcp server configuration.
//
// Values are resolved with spf13/viper from, in decreasing priority:
// command line flags, GMAILMCP_* environment variables (plus the
// GMAIL_CREDENTIALS_PATH, GMAIL_TOKEN_PATH and N8N_WEBHOOK_BASE_URL
// aliases), a YAML config file and built-in defaults. A .env file in the
// working directory is loaded into the environment first and never
// overrides variables that are already set.
package config
