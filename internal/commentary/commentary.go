// Package commentary turns computed figures into narrative text with a language model.
package commentary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"PortfolioLens/internal/model"
)

// ErrDisabled is returned when no generator is configured.
var ErrDisabled = errors.New("commentary disabled")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Sectors are the accepted sector classifications.
var Sectors = []string{
	"Technology", "Healthcare", "Financials", "Consumer Discretionary", "Consumer Staples",
	"Energy", "Industrials", "Materials", "Utilities", "Real Estate", "Communication Services",
}

// OtherSector is used for replies that match no known sector.
const OtherSector = "Other"

// Service builds prompts from portfolio data and returns the generated text.
// A Service with a nil generator reports ErrDisabled.
type Service struct {
	gen Generator
	log zerolog.Logger
}

func NewService(gen Generator, log zerolog.Logger) *Service {
	return &Service{gen: gen, log: log.With().Str("component", "commentary").Logger()}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool { return s != nil && s.gen != nil }

func (s *Service) generate(ctx context.Context, system, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	return s.gen.Generate(ctx, system, prompt)
}

// ClassifySector asks for the sector of ticker and maps the reply onto Sectors.
func (s *Service) ClassifySector(ctx context.Context, ticker string) (string, error) {
	reply, err := s.generate(ctx, sectorSystem, fmt.Sprintf(sectorPrompt, ticker, strings.Join(Sectors, ", ")))
	if err != nil {
		return "", fmt.Errorf("classify %s: %w", ticker, err)
	}
	sector := MatchSector(reply)
	s.log.Debug().Str("ticker", ticker).Str("reply", reply).Str("sector", sector).Msg("sector classified")
	return sector, nil
}

// MatchSector maps a free-form reply onto one of Sectors, falling back to OtherSector.
func MatchSector(reply string) string {
	r := strings.ToLower(strings.Trim(strings.TrimSpace(reply), ".\"'*"))
	for _, s := range Sectors {
		if r == strings.ToLower(s) {
			return s
		}
	}
	// Prefer the longest contained name.
	best := ""
	for _, s := range Sectors {
		if strings.Contains(r, strings.ToLower(s)) && len(s) > len(best) {
			best = s
		}
	}
	if best != "" {
		return best
	}
	return OtherSector
}

// RiskCommentary interprets the five risk metrics of report.
func (s *Service) RiskCommentary(ctx context.Context, report model.RiskReport) (string, error) {
	return s.generate(ctx, riskSystem, RiskPrompt(report))
}

// ResearchOverview summarizes a research snapshot.
func (s *Service) ResearchOverview(ctx context.Context, snap model.ResearchSnapshot) (string, error) {
	return s.generate(ctx, researchSystem, ResearchPrompt(snap))
}

// PortfolioReview comments on the book summary and its performance against the benchmark.
func (s *Service) PortfolioReview(ctx context.Context, summary model.Summary, perf model.PerformanceReport) (string, error) {
	return s.generate(ctx, portfolioSystem, PortfolioPrompt(summary, perf))
}
