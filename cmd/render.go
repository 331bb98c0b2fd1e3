package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/agentic-research/spreadjson/internal/render"
	"github.com/agentic-research/spreadjson/internal/source"
	"github.com/agentic-research/spreadjson/spread"
)

var (
	dataPath string
	outPath  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Populate an HTML page from one data file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := hostFS()
		logger := newLogger(cmd.ErrOrStderr())

		b, err := loadBinding(cmd, fs)
		if err != nil {
			return err
		}
		cache, err := spread.NewBindingCache(spread.DefaultBindingCacheSize)
		if err != nil {
			return err
		}
		engine, err := render.NewEngine(b, cache, logger)
		if err != nil {
			return err
		}

		p, err := absPath(dataPath)
		if err != nil {
			return err
		}
		data, err := source.Load(fs, p)
		if err != nil {
			return err
		}
		if p, err = absPath(htmlPath); err != nil {
			return err
		}
		page, err := util.ReadFile(fs, p)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}

		var out bytes.Buffer
		if err := engine.Render(data, page, &out); err != nil {
			return err
		}
		if outPath == "" || outPath == "-" {
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		}
		if p, err = absPath(outPath); err != nil {
			return err
		}
		if err := util.WriteFile(fs, p, out.Bytes(), os.FileMode(0o644)); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		logger.Info("rendered", "out", outPath)
		return nil
	},
}

func init() {
	addBindingFlags(renderCmd)
	renderCmd.Flags().StringVarP(&dataPath, "data", "d", "", "Path to the data file (JSON or YAML)")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	_ = renderCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(renderCmd)
}
