package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for skewscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skewscan",
		Short: "Find skewed page scans in an OCR'd dictionary corpus",
		Long: `skewscan flags dictionary pages whose OCR text suggests the scan was
skewed or cropped: a short final line, too few two-column lines, or too
many blank lines.

It can also download the page scans (crawl), recognize them (ocr), parse
the text into dictionary entries (parse) and keep a history of
classification runs for comparison.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .skewscan in current or home directory)")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this rotating file")
	cmd.PersistentFlags().Bool("log-json", false, "Write terminal logs as JSON")

	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewParseCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewOCRCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewOpenCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
