package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/examgenius-backend/internal/app"
	"github.com/yungbote/examgenius-backend/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed --file questions.yaml",
	Short: "Import a question bank from YAML",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringP("file", "f", "", "YAML file with a list of questions (or a top-level questions: key)")
	seedCmd.Flags().Int("batch", 500, "questions per upload transaction")
	seedCmd.Flags().Bool("dry-run", false, "parse and count the file without writing")
	_ = seedCmd.MarkFlagRequired("file")
}

type seedFile struct {
	Questions []services.QuestionUpload `yaml:"questions"`
}

// readSeedFile accepts either a bare YAML sequence or a mapping with a questions key.
func readSeedFile(r io.Reader) ([]services.QuestionUpload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var list []services.QuestionUpload
	if err := yaml.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, errors.New("seed file has no questions")
		}
		return list, nil
	}
	var wrapped seedFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(wrapped.Questions) == 0 {
		return nil, errors.New("seed file has no questions")
	}
	return wrapped.Questions, nil
}

func batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

func runSeed(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	batchSize, _ := cmd.Flags().GetInt("batch")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	items, err := readSeedFile(f)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d questions parsed from %s\n", len(items), path)
		return nil
	}

	log, cfg, err := app.Bootstrap()
	if err != nil {
		return err
	}
	a, err := app.NewCore(log, cfg)
	if err != nil {
		log.Sync()
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	total := 0
	for i, batch := range batches(items, batchSize) {
		uploaded, err := a.Services.Admin.UploadQuestions(cmd.Context(), batch)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		total += len(uploaded)
		a.Log.Info("Seed batch uploaded", "batch", i+1, "questions", len(uploaded))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d questions imported\n", total)
	return nil
}
