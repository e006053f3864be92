// Package extract turns lab report documents into raw metric readings
// using an LLM with vision/document support.
package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/pkg/anthropic"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	maxOutputTokens  = 4096
	docConcurrency   = 3
	unreadableMarker = "UNREADABLE_DOCUMENT"
)

var (
	// ErrUnreadableDocument means the model could not read the document at
	// all (corrupt scan, wrong file, unsupported language).
	ErrUnreadableDocument = eris.New("extract: document is unreadable")

	// ErrNoResults means the document was readable but contained no lab
	// test values.
	ErrNoResults = eris.New("extract: no test results found in document")
)

// Document is one uploaded lab report to analyze.
type Document struct {
	Name      string
	MediaType string // "application/pdf" or an image mime type
	Data      []byte
}

// Analyzer extracts readings from lab documents via the Anthropic API.
type Analyzer struct {
	client  anthropic.Client
	limiter *rate.Limiter
	model   string
}

// Opts configures an Analyzer.
type Opts struct {
	Model          string
	RequestsPerMin int
}

// NewAnalyzer creates an Analyzer. A zero RequestsPerMin disables rate
// limiting.
func NewAnalyzer(client anthropic.Client, opts Opts) *Analyzer {
	m := opts.Model
	if m == "" {
		m = defaultModel
	}
	limit := rate.Inf
	if opts.RequestsPerMin > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMin) / 60.0)
	}
	return &Analyzer{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		model:   m,
	}
}

// Analyze extracts the raw readings from a single document. Readings come
// back exactly as the model reported them; canonicalization and dedup are
// the normalizer's job.
func (a *Analyzer) Analyze(ctx context.Context, doc Document) ([]model.ExtractedReading, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: rate limit wait")
	}

	log := zap.L().With(zap.String("document", doc.Name))

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: maxOutputTokens,
		System: []anthropic.SystemBlock{
			{Text: extractionSystemPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}},
		},
		Messages: []anthropic.Message{
			{
				Role:    "user",
				Content: extractionUserPrompt,
				Attachments: []anthropic.Attachment{
					{MediaType: doc.MediaType, Data: doc.Data},
				},
			},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: analyze %s", doc.Name)
	}

	resp.Usage.LogCost(resp.Model, "extract")

	readings, err := parseReadings(resp.Text())
	if err != nil {
		return nil, err
	}

	log.Info("document analyzed", zap.Int("readings", len(readings)))
	return readings, nil
}

// AnalyzeAll runs Analyze over several documents concurrently and
// concatenates the readings in document order. A document that fails with
// ErrNoResults contributes nothing but does not fail the batch; any other
// error aborts.
func (a *Analyzer) AnalyzeAll(ctx context.Context, docs []Document) ([]model.ExtractedReading, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	// Each goroutine writes its own slot, so no locking is needed.
	results := make([][]model.ExtractedReading, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(docConcurrency)

	for i, doc := range docs {
		g.Go(func() error {
			readings, err := a.Analyze(gctx, doc)
			if err != nil {
				if eris.Is(err, ErrNoResults) {
					zap.L().Warn("document had no test results",
						zap.String("document", doc.Name))
					return nil
				}
				return err
			}
			results[i] = readings
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "extract: analyze batch")
	}

	var out []model.ExtractedReading
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// parseReadings decodes the model's reply into readings. The reply contract
// is a bare JSON array; markdown fences and surrounding prose are tolerated.
func parseReadings(text string) ([]model.ExtractedReading, error) {
	if strings.Contains(text, unreadableMarker) {
		return nil, ErrUnreadableDocument
	}

	cleaned := cleanJSONArray(text)
	if cleaned == "" {
		return nil, ErrNoResults
	}

	var readings []model.ExtractedReading
	if err := json.Unmarshal([]byte(cleaned), &readings); err != nil {
		return nil, eris.Wrap(err, "extract: parse model reply")
	}
	if len(readings) == 0 {
		return nil, ErrNoResults
	}
	return readings, nil
}

// cleanJSONArray strips markdown fences and extracts the first JSON array.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
