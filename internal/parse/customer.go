package parse

import (
	"context"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/match"
	"freshops/internal/util"
)

// HistoryFunc fetches the product codes a customer (matched by company-name
// fragment) has ordered before. Backed by the record store; injectable so
// the pipeline stays testable without one.
type HistoryFunc func(ctx context.Context, nameFragment string) (map[string]struct{}, error)

// CustomerResolver matches the first non-item line of a pasted order against
// the customer registry.
type CustomerResolver struct {
	cfg    config.Config
	scorer match.TokenScorer
}

func NewCustomerResolver(cfg config.Config) *CustomerResolver {
	return &CustomerResolver{cfg: cfg}
}

// Resolve returns the best-scoring customer at or above the acceptance
// threshold, or nil. Candidates are scored against "{companyName} {branch}",
// with a capped bonus when the input also matches the branch on its own.
// First-seen highest score wins, so registry order decides exact ties.
func (r *CustomerResolver) Resolve(line string, customers []internal.CustomerRecord) (*internal.CustomerRecord, float64) {
	input := util.Normalize(line)
	if input == "" {
		return nil, 0
	}

	var best *internal.CustomerRecord
	bestScore := 0.0
	for i := range customers {
		c := customers[i]
		candidate := util.Normalize(c.CompanyName + " " + c.Branch)
		score := r.scorer.Score(input, candidate)
		if c.Branch != "" {
			bonus := r.scorer.Score(input, util.Normalize(c.Branch)) * match.BranchBonusWeight
			if bonus > match.BranchBonusCap {
				bonus = match.BranchBonusCap
			}
			score += bonus
		}
		if score > bestScore {
			bestScore = score
			best = &customers[i]
		}
	}

	if best == nil || bestScore < r.cfg.CustomerMatchThreshold {
		return nil, bestScore
	}
	return best, bestScore
}
