package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go-tone-inspector/internal/analyzer"
	"go-tone-inspector/internal/factory"
	"go-tone-inspector/internal/logger"
	"go-tone-inspector/internal/normalizer"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// analyzeFlags holds the flags of the analyze command
type analyzeFlags struct {
	rulesFile string
	maxEdge   int
	maxPixels int
	workers   int
	compact   bool
	logLevel  string
}

// fileResult is one line of analyze output
type fileResult struct {
	File   string                   `json:"file"`
	Format string                   `json:"format,omitempty"`
	Result *analyzer.AnalysisResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tonectl",
		Short:         "Classify the tonal structure of images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newTonesCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze image files and print the results as JSON",
		Long: `Decodes each file, scales it to fit within --max-edge pixels and classifies
its tone into one of ten categories. Files are analyzed concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetFormat(logger.FormatText)
			return runAnalyze(cmd.OutOrStdout(), flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.rulesFile, "rules", "", "YAML file overriding the classification thresholds")
	cmd.Flags().IntVar(&flags.maxEdge, "max-edge", normalizer.DefaultMaxEdge, "longest edge after scaling")
	cmd.Flags().IntVar(&flags.maxPixels, "max-source-pixels", normalizer.DefaultMaxSourcePixels, "reject images declaring more pixels than this")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "analysis workers (0 uses the CPU count)")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "print one JSON object per line")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}

func newTonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tones",
		Short: "List the tone categories and their notation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range analyzer.ToneTypes() {
				if _, err := fmt.Fprintf(out, "%-3s %s\n", t.Notation(), t); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runAnalyze(out io.Writer, flags *analyzeFlags, files []string) error {
	logger.SetLevel(flags.logLevel)

	a, err := factory.NewAnalyzerFactory(flags.rulesFile, flags.maxEdge, flags.workers).CreateAnalyzer()
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	defer a.Close()

	norm := normalizer.NewImageNormalizer(flags.maxEdge, normalizer.WithMaxSourcePixels(flags.maxPixels))
	results := make([]fileResult, len(files))
	images := make([]analyzer.RawImage, 0, len(files))
	positions := make([]int, 0, len(files))

	for i, file := range files {
		results[i].File = file
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		normalized, err := norm.Normalize(data)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		results[i].Format = normalized.Format
		images = append(images, normalized.Image)
		positions = append(positions, i)
	}

	for _, br := range a.AnalyzeBatch(images) {
		idx := positions[br.Index]
		if br.Err != nil {
			results[idx].Error = br.Err.Error()
			continue
		}
		results[idx].Result = br.Result
	}

	failed := 0
	enc := json.NewEncoder(out)
	if !flags.compact {
		enc.SetIndent("", "  ")
	}
	for _, r := range results {
		if r.Error != "" {
			failed++
			logger.WithFields(logrus.Fields{"file": r.File}).Warn(r.Error)
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(files))
	}
	return nil
}
