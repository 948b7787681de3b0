package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gmailmcp application
var rootCmd = &cobra.Command{
	Use:   "gmailmcp",
	Short: "Gmail tools for AI assistants over the Model Context Protocol",
	Long: `gmailmcp exposes a Gmail mailbox as a catalog of MCP tools: sending,
searching, labelling, filtering and cleaning up mail.

Run "gmailmcp auth url" once per account to authorize access, then
"gmailmcp serve" to start the server.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// configFile is the --config flag shared by all commands.
var configFile string

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmailmcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/gmailmcp/config.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}
