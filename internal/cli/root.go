package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ferrite",
	Short: "Ferrite - explain Rust source without compiling it",
	Long: `Ferrite reads Rust source files and explains them: it tokenizes the text,
extracts top-level declarations with their extents, derives plain-language
notes about why each declaration exists and how it works, and records where
every declared name is used.

Analysis is heuristic and never fails. Files do not need to compile.

Project commands (index, search, watch, mcp) keep a SQLite index under
.ferrite/ in the project root, configured by .ferrite/config.yml.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&rootDirFlag, "root", "C", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Bind flags to viper
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
