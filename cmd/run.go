package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/ai"
	"github.com/T-USMANI24/hr-matcher/internal/ai/gemini"
	"github.com/T-USMANI24/hr-matcher/internal/decision"
	"github.com/T-USMANI24/hr-matcher/internal/export"
	"github.com/T-USMANI24/hr-matcher/internal/features"
	"github.com/T-USMANI24/hr-matcher/internal/filtering"
	"github.com/T-USMANI24/hr-matcher/internal/history"
	"github.com/T-USMANI24/hr-matcher/internal/logger"
	"github.com/T-USMANI24/hr-matcher/internal/rl"
	"github.com/T-USMANI24/hr-matcher/internal/secrets"
	"github.com/T-USMANI24/hr-matcher/internal/training"
)

const (
	PromptReportByDecision = "Report by decision"
	PromptSummary          = "Distribution summary"
	PromptDumpToFile       = "Dump decisions to file"
	PromptExit             = "Exit"

	providerLexicon = "lexicon"
	providerGemini  = "gemini"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportByDecision, PromptSummary, PromptDumpToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score and decide every CV of a directory against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("jd", "", "file with the job description")
	runCmd.Flags().String("cvs", "", "directory with one .txt file per CV")
	runCmd.Flags().String("feedback", "", "file with one line of HR feedback per CV, in CV file name order")
	runCmd.Flags().BoolP("yes", "y", false, "do not show the interactive menu after the run")
	runCmd.Flags().String("export-csv", "", "write decisions as CSV to this file")
	runCmd.Flags().String("export-json", "", "write decisions as JSON to this file")

	runCmd.MarkFlagRequired("jd")
	runCmd.MarkFlagRequired("cvs")
	runCmd.MarkFlagRequired("feedback")

	viper.BindPFlag("export.csv", runCmd.Flags().Lookup("export-csv"))
	viper.BindPFlag("export.json", runCmd.Flags().Lookup("export-json"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()
	config := mustConfig(logger)

	logger.Info("starting the hr-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	jd, err := readText(cmd.Flag("jd").Value.String())
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	candidates, err := readCandidates(cmd.Flag("cvs").Value.String())
	if err != nil {
		logger.Fatal("reading CVs", zap.Error(err))
	}

	feedbacks, err := readFeedback(cmd.Flag("feedback").Value.String())
	if err != nil {
		logger.Fatal("reading feedback", zap.Error(err))
	}

	logger.Info("loaded inputs", zap.Int("cvs", len(candidates)), zap.Int("feedbacks", len(feedbacks)))

	if err := checkInputs(candidates, feedbacks); err != nil {
		logger.Fatal("checking inputs", zap.Error(err))
	}
	if len(candidates) == 0 {
		logger.Info("exiting", zap.String("reason", "no CVs found"))
		return
	}

	table, err := loadPolicy(config.Policy, logger)
	if err != nil {
		logger.Fatal("loading the policy", zap.Error(err))
	}

	gate, err := filtering.New(filtering.Thresholds{
		Similarity: config.Thresholds.Similarity,
		SkillMatch: config.Thresholds.SkillMatch,
	}, logger)
	if err != nil {
		logger.Fatal("building hard filters", zap.Error(err))
	}
	for _, status := range gate.Describe() {
		logger.Debug("hard filter", zap.String("rule", status.Name), zap.Any("details", status.Details))
	}

	classifier, err := newSentimentClassifier(ctx, config.Sentiment, logger)
	if err != nil {
		logger.Fatal("building the sentiment classifier", zap.Error(err))
	}

	engine, err := decision.NewEngine(table, gate, decision.Config{
		Epsilon:         config.Policy.Epsilon,
		LearningRate:    config.Policy.LearningRate,
		PositiveActions: config.Policy.PositiveActions,
	}, logger)
	if err != nil {
		logger.Fatal("building the decision engine", zap.Error(err))
	}

	extractor := features.NewExtractor(features.TFIDF{}, classifier, config.Workers, logger)

	result, err := decision.NewBatch(extractor, engine, logger).Run(ctx, jd, candidates, feedbacks)
	if err != nil {
		logger.Fatal("deciding candidates", zap.Error(err))
	}

	if err := table.Save(config.Policy.File); err != nil {
		logger.Fatal("saving the policy", zap.Error(err), zap.String("file", config.Policy.File))
	}
	logger.Info("policy saved",
		zap.String("file", config.Policy.File),
		zap.Int("states", table.Len()),
		zap.Int("rewards", len(table.Rewards())),
	)

	if err := exportResults(config.Export, result.Records, logger); err != nil {
		logger.Fatal("exporting decisions", zap.Error(err))
	}

	if err := recordHistory(ctx, config, jd, result.Records, logger); err != nil {
		logger.Fatal("recording history", zap.Error(err))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		reportSummary(result.Records, logger)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, result.Records, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, records []decision.Record, logger *zap.Logger) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByDecision:
		pretty, _ := json.MarshalIndent(export.ReportByDecision(records), "", "  ")
		logger.Info(string(pretty), zap.Int("candidates count", len(records)))
		return nil
	case PromptSummary:
		reportSummary(records, logger)
		return nil
	case PromptDumpToFile:
		filename, err := export.DumpToTmpFile(records)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func reportSummary(records []decision.Record, logger *zap.Logger) {
	pretty, _ := json.MarshalIndent(export.Summarize(records), "", "  ")
	logger.Info(string(pretty), zap.Int("candidates count", len(records)))
}

// loadPolicy restores the persisted policy or, when none exists, trains a
// fresh one with the seed examples.
func loadPolicy(cfg *PolicyConfig, logger *zap.Logger) (*rl.Table, error) {
	var opts []rl.Option
	if cfg.Seed != 0 {
		opts = append(opts, rl.WithSeed(cfg.Seed))
	}

	table, err := rl.NewTable(cfg.Actions, opts...)
	if err != nil {
		return nil, err
	}

	loaded, err := table.Load(cfg.File)
	if err != nil {
		return nil, err
	}
	if loaded {
		logger.Info("policy loaded", zap.String("file", cfg.File), zap.Int("states", table.Len()))
		return table, nil
	}

	examples, err := training.Load(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	if err := training.Apply(table, examples, cfg.LearningRate); err != nil {
		return nil, err
	}

	logger.Info("no stored policy; trained from seed examples",
		zap.String("file", cfg.File),
		zap.Int("examples", len(examples)),
	)
	return table, nil
}

func newSentimentClassifier(ctx context.Context, cfg *SentimentConfig, log *zap.Logger) (ai.SentimentClassifier, error) {
	provider := providerLexicon
	if cfg != nil {
		if p := strings.TrimSpace(strings.ToLower(cfg.Provider)); p != "" {
			provider = p
		}
	}

	switch provider {
	case providerLexicon:
		log.Info("using sentiment provider", logger.ProviderFields(providerLexicon, "")...)
		return features.Lexicon{}, nil
	case providerGemini:
	default:
		return nil, fmt.Errorf("unsupported sentiment provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when sentiment.provider is gemini")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set sentiment.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithFields(log, logger.ProviderFields(providerGemini, cfg.Gemini.Model)...).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	log.Info("using sentiment provider", logger.ProviderFields(providerGemini, generator.Model())...)
	return gemini.NewClassifier(generator, cfg.Gemini.MaxLogLength, genLogger), nil
}

func exportResults(cfg *ExportConfig, records []decision.Record, logger *zap.Logger) error {
	if cfg == nil {
		return nil
	}

	if path := strings.TrimSpace(cfg.CSV); path != "" {
		if err := export.SaveCSV(path, records); err != nil {
			return err
		}
		logger.Info("decisions exported", zap.String("format", "csv"), zap.String("file", path))
	}

	if path := strings.TrimSpace(cfg.JSON); path != "" {
		if err := export.SaveJSON(path, records); err != nil {
			return err
		}
		logger.Info("decisions exported", zap.String("format", "json"), zap.String("file", path))
	}

	return nil
}

func recordHistory(ctx context.Context, config *Config, jd string, records []decision.Record, log *zap.Logger) error {
	if config.History == nil || strings.TrimSpace(config.History.Path) == "" {
		return nil
	}

	store, err := history.Open(config.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.RecordRun(ctx, history.RunParams{
		JD:           jd,
		Epsilon:      config.Policy.Epsilon,
		LearningRate: config.Policy.LearningRate,
	}, records)
	if err != nil {
		return err
	}

	log.Info("run recorded",
		zap.String(logger.FieldRunID, stored.ID),
		zap.String("file", config.History.Path),
	)
	return nil
}

// checkInputs fails when the feedback lines cannot be paired one to one with
// the CVs, including the case of feedback without any CV.
func checkInputs(candidates []decision.Candidate, feedbacks []string) error {
	if len(candidates) != len(feedbacks) {
		return fmt.Errorf("%w: %d candidates, %d feedbacks", decision.ErrBatchSizeMismatch, len(candidates), len(feedbacks))
	}
	return nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readCandidates returns the .txt files of dir sorted by file name.
func readCandidates(dir string) ([]decision.Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var candidates []decision.Candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}

		text, err := readText(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, decision.Candidate{Name: entry.Name(), Text: text})
	}
	return candidates, nil
}

// readFeedback returns the non-empty lines of path.
func readFeedback(path string) ([]string, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	var feedbacks []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			feedbacks = append(feedbacks, line)
		}
	}
	return feedbacks, nil
}
