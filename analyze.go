package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	appconfig "github.com/muhammadolammi/resumematch/internal/config"
	"github.com/muhammadolammi/resumematch/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one résumé against a job description and print the result",
	Example: `  resumematch analyze --resume cv.pdf --job job.txt
  resumematch analyze --resume cv.docx --job-text "Python and SQL required"`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("resume", "", "path to a PDF or DOCX résumé")
	analyzeCmd.Flags().String("job", "", "path to a text file with the job description, - for stdin")
	analyzeCmd.Flags().String("job-text", "", "job description given inline")
	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-text")
	analyzeCmd.MarkFlagsOneRequired("job", "job-text")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := appconfig.Load(viper.GetViper())
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	resume, _ := cmd.Flags().GetString("resume")
	jobDescription, err := readJobDescription(cmd)
	if err != nil {
		return err
	}

	res, err := newAnalyzer(cfg, log).Analyze(resume, jobDescription)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res)
}

func readJobDescription(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("job-text") {
		return cmd.Flags().GetString("job-text")
	}
	path, _ := cmd.Flags().GetString("job")
	if path == "" {
		return "", errors.New("job description required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
