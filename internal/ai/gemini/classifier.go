package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/ai"
	"github.com/T-USMANI24/hr-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Classifier labels HR feedback with a Gemini model.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

var _ ai.SentimentClassifier = (*Classifier)(nil)

type sentimentResponse struct {
	Label string  `mapstructure:"label"`
	Score float64 `mapstructure:"score"`
}

func NewClassifier(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Classifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Classifier{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) (*ai.SentimentAssessment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &ai.SentimentAssessment{Label: ai.LabelNeutral}, nil
	}

	prompt := buildPrompt(text)

	c.logger.Debug("gemini sentiment request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("feedback_preview", utils.TruncateForLog(text, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini sentiment response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(feedback string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Feedback:\n{{FEEDBACK}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{FEEDBACK}}", feedback)
}

func parseResponse(raw string) (*ai.SentimentAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var resp sentimentResponse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("build response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	if math.IsNaN(resp.Score) || math.IsInf(resp.Score, 0) {
		return nil, errors.New("gemini response score is not a finite number")
	}
	score := math.Max(-1, math.Min(1, resp.Score))

	return &ai.SentimentAssessment{
		Label: normalizeLabel(resp.Label, score),
		Score: math.Round(score*100) / 100,
	}, nil
}

// normalizeLabel accepts the three labels in any case and otherwise derives
// the label from the score.
func normalizeLabel(label string, score float64) string {
	for _, known := range []string{ai.LabelPositive, ai.LabelNegative, ai.LabelNeutral} {
		if strings.EqualFold(strings.TrimSpace(label), known) {
			return known
		}
	}
	return ai.LabelForScore(score)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
