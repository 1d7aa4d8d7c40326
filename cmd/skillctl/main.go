package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/presenter"
	"github.com/legout/skillctl/pkg/skill"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLCTL")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName(".skillctl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	viper.SetDefault("root", ".")
	viper.SetDefault("output", "skills")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("max_lines", 500)
	viper.SetDefault("max_description", 256)
}

var rootCmd = &cobra.Command{
	Use:   "skillctl",
	Short: "Lint, build, and browse agent skill repositories",
	Long: `Skillctl manages repositories of agent skills: Markdown documents with
YAML frontmatter that describe reusable instructions for coding agents.

It validates skill documents and their dependency graph, assembles the
distributable skills directory, and serves a local preview of the
repository.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Warning(fmt.Sprintf("invalid log level %q, keeping default", viper.GetString("log_level")))
		}
		logger.SetLogFormat(viper.GetString("log_format"))

		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// newDiscovery builds a skill discovery from the resolved configuration.
// Commands share this so lint, build, list, and serve all walk the same
// tree the same way.
func newDiscovery(extra ...skill.Option) (*skill.Discovery, error) {
	opts := []skill.Option{
		skill.WithRoot(viper.GetString("root")),
		skill.WithOutputDir(viper.GetString("output")),
	}
	if patterns := viper.GetStringSlice("ignore"); len(patterns) > 0 {
		opts = append(opts, skill.WithIgnorePatterns(patterns...))
	}
	opts = append(opts, extra...)
	return skill.NewDiscovery(opts...)
}

func main() {
	rootCmd.PersistentFlags().String("root", ".", "Repository root to discover skills from")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json, fmt)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-essential output")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
