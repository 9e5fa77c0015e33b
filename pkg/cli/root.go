package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configFile string
	dataDir    string
	jsonOutput bool
	logLevel   string
	logFormat  string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldmap",
	Short: "fieldmap maps source CRM records onto target CRM records",
	Long: `fieldmap manages field-mapping rule sets that translate records from a source
CRM into the shape a target CRM expects, and serves them over HTTP.

Configuration can be provided via flags, FIELDMAP_* environment variables,
a local .fieldmaprc.yaml or the global config file.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Main()
}

// hinter is implemented by errors that carry a suggestion for the user.
type hinter interface {
	Hint() string
}

// Main runs the root command and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(Main())
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	var h hinter
	if errors.As(err, &h) && h.Hint() != "" {
		fmt.Fprintln(w, "Hint:", h.Hint())
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: .fieldmaprc.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding saved mappings")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json")
}
