package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jpfielding/spritepak/pkg/logging"
	"github.com/spf13/cobra"
)

// KeyEnv supplies the archive key when --key is not set
const KeyEnv = "PAKCTL_KEY"

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pakctl",
		Short:        "inspect and edit PAK sprite archives",
		Long:         "pakctl reads and writes PAK sprite archives: add and remove sprites, edit frame rectangles, reduce colors and repack frames into sprite sheets.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFile, _ := cmd.Flags().GetString("log-file")
			logJSON, _ := cmd.Flags().GetBool("log-json")

			// Parse log level
			var level slog.Level
			levelErr := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if levelErr != nil {
				level = slog.LevelInfo
			}
			var w io.Writer = os.Stderr
			if logFile != "" {
				w = logging.Rotating(logFile)
			}
			slog.SetDefault(logging.Logger(w, logJSON, level))

			if levelErr != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", levelErr)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewInfoCmd(ctx),
		NewNewCmd(ctx),
		NewAddCmd(ctx),
		NewRemoveCmd(ctx),
		NewExtractCmd(ctx),
		NewRectsCmd(ctx),
		NewQuantizeCmd(ctx),
		NewPackCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "write logs to this rotated file instead of stderr")
	pf.Bool("log-json", false, "log as json")
	pf.String("key", "", "archive key for .epak files (default $"+KeyEnv+")")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}

// keyFlag returns --key, falling back to the environment; nil means no key
func keyFlag(cmd *cobra.Command) []byte {
	key, _ := cmd.Flags().GetString("key")
	if key == "" {
		key = os.Getenv(KeyEnv)
	}
	if key == "" {
		return nil
	}
	return []byte(key)
}
