package match

import (
	"context"
	"sort"
	"time"

	"alumni-match/internal/common/errors"
	"alumni-match/internal/common/logger"
	"alumni-match/internal/common/metrics"
	"alumni-match/internal/identity"
	"alumni-match/internal/tags"
)

// Score weights for the explainable heuristic.
const (
	weightSkillOverlap      = 10
	weightTagOverlap        = 5
	weightMutualConnections = 3
	weightIndustryMatch     = 8
)

// Engine computes ranked, explainable matches for a requester.
type Engine struct {
	repo         ProfileRepository
	defaultLimit int
	maxLimit     int
	logger       logger.Logger
}

// NewEngine creates a matching engine over a profile repository.
func NewEngine(repo ProfileRepository, defaultLimit, maxLimit int, log logger.Logger) *Engine {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &Engine{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       log.WithFields(map[string]interface{}{"component": "match"}),
	}
}

// complementaryRole picks which side of the platform to match against:
// students are matched with alumni and vice versa. Generic users are matched
// with alumni mentors.
func complementaryRole(r identity.Role) identity.Role {
	if r == identity.RoleAlumni {
		return identity.RoleStudent
	}
	return identity.RoleAlumni
}

// Match loads the requester's profile, scores the filtered candidate set and
// returns the ranked results, highest score first.
func (e *Engine) Match(ctx context.Context, requesterID string, opts Options) ([]Result, error) {
	started := time.Now()

	requester, err := e.repo.GetProfile(ctx, requesterID)
	if err != nil {
		return nil, errors.NewDependencyUnavailableError("profile repository", err)
	}
	if requester == nil {
		return nil, errors.NewNotFoundError("profile", requesterID)
	}

	// Canonical tag set: union of the requester's skills, interests and tags.
	combined := make([]string, 0, len(requester.Skills)+len(requester.Interests)+len(requester.Tags))
	combined = append(combined, requester.Skills...)
	combined = append(combined, requester.Interests...)
	combined = append(combined, requester.Tags...)
	tagSet := tags.ToSet(tags.Canonicalize(combined))

	connections := make(map[string]struct{}, len(requester.Connections))
	for _, id := range requester.Connections {
		connections[id] = struct{}{}
	}

	filter := Filter{
		Role:           complementaryRole(requester.Role),
		MentorshipOnly: opts.MentorshipOnly,
		Industries:     opts.Industries,
	}
	candidates, err := e.repo.QueryCandidates(ctx, filter)
	if err != nil {
		return nil, errors.NewDependencyUnavailableError("profile repository", err)
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if c.Suspended || c.ID == requester.ID {
			continue
		}

		skillOverlap := tags.Overlap(c.Skills, tagSet)
		tagOverlap := tags.Overlap(c.Tags, tagSet)

		mutual := 0
		for _, id := range c.Connections {
			if _, ok := connections[id]; ok {
				mutual++
			}
		}

		industryMatch := 0
		if c.Industry != "" && c.Industry == requester.Industry {
			industryMatch = 1
		}

		results = append(results, Result{
			CandidateID:       c.ID,
			Name:              c.Name,
			Industry:          c.Industry,
			Skills:            c.Skills,
			Tags:              c.Tags,
			Score:             weightSkillOverlap*skillOverlap + weightTagOverlap*tagOverlap + weightMutualConnections*mutual + weightIndustryMatch*industryMatch,
			SkillOverlap:      skillOverlap,
			TagOverlap:        tagOverlap,
			MutualConnections: mutual,
		})
	}

	// Score desc, then skill overlap desc, then id asc so repeated runs over
	// identical data produce identical orderings.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].SkillOverlap != results[j].SkillOverlap {
			return results[i].SkillOverlap > results[j].SkillOverlap
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	metrics.MatchDuration.Observe(time.Since(started).Seconds())
	metrics.MatchCandidatesScored.Observe(float64(len(candidates)))

	e.logger.Debug("ranked candidates", map[string]interface{}{
		"requesterId": requesterID,
		"candidates":  len(candidates),
		"returned":    len(results),
	})

	return results, nil
}
