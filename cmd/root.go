package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/spreadjson/api"
	"github.com/agentic-research/spreadjson/internal/rulefile"
)

var (
	verbose bool

	rulesPath  string
	htmlPath   string
	container  string
	selectExpr string
	auto       bool
	attributes bool
)

var rootCmd = &cobra.Command{
	Use:           "spreadjson",
	Short:         "Spread JSON data onto existing HTML with declarative rules",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
}

// addBindingFlags registers the flags shared by render and batch.
func addBindingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Path to binding document (YAML or JSON)")
	cmd.Flags().StringVarP(&htmlPath, "html", "t", "", "Path to the HTML page to populate")
	cmd.Flags().StringVar(&container, "container", "", "CSS selector of the element to spread into")
	cmd.Flags().StringVar(&selectExpr, "select", "", "JSONPath selecting the value to spread")
	cmd.Flags().BoolVar(&auto, "auto", false, "Derive rules from the data")
	cmd.Flags().BoolVar(&attributes, "attributes", false, "Honour data-js and data-js-list attributes")
	_ = cmd.MarkFlagRequired("html")
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// hostFS is the local filesystem; paths handed to it are made absolute first.
func hostFS() billy.Filesystem {
	return osfs.New("/")
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

// loadBinding reads the binding document, if any, and applies flag overrides.
func loadBinding(cmd *cobra.Command, fs billy.Filesystem) (*api.Binding, error) {
	b := &api.Binding{Version: api.Version}
	if rulesPath != "" {
		p, err := absPath(rulesPath)
		if err != nil {
			return nil, err
		}
		if b, err = rulefile.Load(fs, p); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("container") {
		b.Container = container
	}
	if cmd.Flags().Changed("select") {
		b.Select = selectExpr
	}
	if auto {
		b.Auto = true
	}
	if attributes {
		b.Attributes = true
	}
	return b, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
