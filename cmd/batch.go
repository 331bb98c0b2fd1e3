package cmd

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/agentic-research/spreadjson/internal/render"
	"github.com/agentic-research/spreadjson/internal/source"
	"github.com/agentic-research/spreadjson/spread"
)

var (
	dbPath string
	table  string
	outDir string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render one page per record of a SQLite table",
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

		p, err := absPath(htmlPath)
		if err != nil {
			return err
		}
		page, err := util.ReadFile(fs, p)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		dir, err := absPath(outDir)
		if err != nil {
			return err
		}

		start := time.Now()
		n, err := engine.RenderSQLite(dbPath, table, page, fs, dir)
		if err != nil {
			return err
		}
		logger.Info("batch done", "pages", n, "dir", outDir, "elapsed", time.Since(start))
		return nil
	},
}

func init() {
	addBindingFlags(batchCmd)
	batchCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database holding the records")
	batchCmd.Flags().StringVar(&table, "table", source.DefaultTable, "Table with (id, record) columns")
	batchCmd.Flags().StringVarP(&outDir, "out-dir", "o", "out", "Directory for the rendered pages")
	_ = batchCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(batchCmd)
}
