// Command postcode classifies Victorian postcodes and manages the boundary dataset from the shell.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/config"
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
	"github.com/postcode-finder/internal/pkg/logger"
)

var out io.Writer = os.Stdout

var rootCmd = &cobra.Command{
	Use:          "postcode",
	Short:        "Victorian postcode visa eligibility tools",
	Long:         "Classify postcodes for WHV 417 and 491 eligibility, inspect boundary files and manage the served dataset.",
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "log debug output to stderr")
	flags.String("env", ".env", "env file with service configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logger.NewCLI(verbose)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("env")
	if err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

func newClassifier() *eligibility.Classifier {
	return eligibility.NewClassifier(domain.VictoriaRuleTables())
}
