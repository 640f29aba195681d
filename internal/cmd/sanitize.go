package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leedsrising/pdf-to-text/internal/config"
	"github.com/leedsrising/pdf-to-text/internal/evidence"
	"github.com/leedsrising/pdf-to-text/internal/sanitize"
)

var sanitizeOutDir string

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <file-or-directory>",
	Short: "Replace detected sensitive spans with typed placeholders",
	Long: `Sanitize runs every detector over each input document and writes a
placeholder-substituted copy. For a directory, every .txt file is processed
into sanitized_<name>.txt in the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		provider, err := buildProvider(cfg)
		if err != nil {
			// The semantic scorer is the only detector that embeds; with it
			// disabled the pipeline runs without a provider.
			if !disableSemantic {
				return err
			}
			provider = nil
		}
		engine, err := buildEngine(ctx, cfg, provider)
		if err != nil {
			return err
		}

		store, err := openEvidenceStore(cfg)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		inputs, err := collectInputs(args[0])
		if err != nil {
			return err
		}

		outDir := sanitizeOutDir
		if outDir == "" {
			outDir = "text_output_sanitized"
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		for _, input := range inputs {
			if err := sanitizeFile(ctx, engine, store, input, outDir); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	sanitizeCmd.Flags().StringVarP(&sanitizeOutDir, "out", "o", "", "output directory (default: text_output_sanitized)")
	sanitizeCmd.Flags().BoolVar(&disableNER, "disable-ner", false, "skip the statistical recognizer")
	sanitizeCmd.Flags().BoolVar(&disableSemantic, "disable-semantic", false, "skip the embedding-based scorer")
	rootCmd.AddCommand(sanitizeCmd)
}

// collectInputs expands a file or directory argument into document paths.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading input path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("globbing input directory: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .txt files found in %s", path)
	}
	return matches, nil
}

func sanitizeFile(ctx context.Context, engine *sanitize.Engine, store *evidence.Store, input, outDir string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	res, err := engine.Sanitize(ctx, string(data))
	if err != nil {
		recordFailure(ctx, store, filepath.Base(input), evidence.OpSanitize, err)
		return fmt.Errorf("sanitizing %s: %w", input, err)
	}

	output := filepath.Join(outDir, "sanitized_"+filepath.Base(input))
	if err := os.WriteFile(output, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	if store != nil {
		rec := &evidence.Record{
			Document:   filepath.Base(input),
			Operation:  evidence.OpSanitize,
			SpanCount:  len(res.Spans),
			ByLabel:    labelCounts(res),
			BySource:   sourceCounts(res),
			DurationMS: res.Duration.Milliseconds(),
		}
		if err := store.Insert(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("recording run evidence failed")
		}
	}

	log.Info().
		Str("input", input).
		Str("output", output).
		Int("spans", len(res.Spans)).
		Msg("document sanitized")
	return nil
}

func openEvidenceStore(cfg *config.Config) (*evidence.Store, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := evidence.NewStore(cfg.EvidenceDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening evidence store: %w", err)
	}
	return store, nil
}

func recordFailure(ctx context.Context, store *evidence.Store, document, op string, cause error) {
	if store == nil {
		return
	}
	rec := &evidence.Record{Document: document, Operation: op, Error: cause.Error()}
	if err := store.Insert(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("recording run failure failed")
	}
}

func labelCounts(res *sanitize.Result) map[string]int {
	out := make(map[string]int, len(res.ByLabel))
	for k, v := range res.ByLabel {
		out[string(k)] = v
	}
	return out
}

func sourceCounts(res *sanitize.Result) map[string]int {
	out := make(map[string]int, len(res.BySource))
	for k, v := range res.BySource {
		out[string(k)] = v
	}
	return out
}
