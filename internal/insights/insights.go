// Package insights turns the pipeline's signal table into a narrative
// report using an LLM provider.
package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/llm"
)

// Generator produces narrative surveillance reports.
type Generator struct {
	llm    llm.Provider
	logger *zap.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(provider llm.Provider, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: provider, logger: logger}
}

// Report is the generated narrative plus token accounting.
type Report struct {
	Provider string
	Content  string
	Usage    llm.Usage
}

// maxPromptRows caps how many signal rows go into the prompt.
const maxPromptRows = 40

// Generate summarizes the signal table into an analyst-style narrative.
func (g *Generator) Generate(ctx context.Context, signals []core.DailySignal) (*Report, error) {
	if len(signals) == 0 {
		return nil, core.ErrNoData
	}

	prompt := buildPrompt(signals)
	g.logger.Debug("requesting insight report",
		zap.String("provider", g.llm.Name()),
		zap.Int("signals", len(signals)))

	resp, err := g.llm.Chat(ctx, llm.Request{
		SystemPrompt: reportSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    2048,
		Temperature:  0.4,
	})
	if err != nil {
		return nil, core.WrapError(core.ErrLLMFailed, err)
	}

	g.logger.Info("insight report generated",
		zap.String("provider", g.llm.Name()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return &Report{
		Provider: g.llm.Name(),
		Content:  resp.Content,
		Usage:    resp.Usage,
	}, nil
}

func buildPrompt(signals []core.DailySignal) string {
	ranked := make([]core.DailySignal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	if len(ranked) > maxPromptRows {
		ranked = ranked[:maxPromptRows]
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Signal Table (%d symbol-days total, top %d by score):\n",
		len(signals), len(ranked)))
	sb.WriteString("symbol | date | score | avg_dominance | avg_price | next_day_return\n")
	for _, s := range ranked {
		sb.WriteString(fmt.Sprintf("%s | %s | %d | %s | %s | %s\n",
			s.Symbol,
			s.Date.Format(core.DateFormat),
			s.TotalScore,
			formatCell(s.AvgDominance),
			formatCell(s.AvgPrice),
			formatCell(s.NextDayReturn)))
	}
	sb.WriteString("\n")

	flagged := 0
	for _, s := range signals {
		if s.TotalScore > 0 {
			flagged++
		}
	}
	sb.WriteString(fmt.Sprintf("## Totals:\n- Symbol-days with nonzero score: %d of %d\n\n",
		flagged, len(signals)))

	sb.WriteString("## Task:\n")
	sb.WriteString("Write a short surveillance report covering:\n")
	sb.WriteString("1. The symbol-days with the strongest manipulation signals and why\n")
	sb.WriteString("2. Whether high scores preceded positive next-day returns\n")
	sb.WriteString("3. Symbols worth escalating to a human analyst\n")

	return sb.String()
}

func formatCell(v float64) string {
	if core.IsNull(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

const reportSystemPrompt = `You are a market surveillance analyst reviewing broker scoring output from a stock exchange floorsheet. Scores aggregate dominance, circular trading, cluster and accumulation flags per broker, summed per symbol-day. Higher scores mean more suspicious coordinated activity. Write concise, factual prose for a compliance audience. Do not invent data not present in the table.`
