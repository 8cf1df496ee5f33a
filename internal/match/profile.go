// Package match ranks candidate mentors for a requester with an explainable
// weighted-sum score.
package match

import (
	"context"

	"alumni-match/internal/identity"
)

// Profile is the read-only candidate record owned by the profile repository.
type Profile struct {
	ID                  string
	Name                string
	Role                identity.Role
	Industry            string
	Skills              []string
	Interests           []string
	Tags                []string
	Connections         []string
	MentorshipAvailable bool
	Suspended           bool
}

// Filter selects candidates for scoring. Suspended accounts are always
// excluded.
type Filter struct {
	Role           identity.Role
	MentorshipOnly *bool
	Industries     []string
}

// Options are the caller-supplied matching filters. A non-positive Limit
// means "use the default", not "return nothing".
type Options struct {
	MentorshipOnly *bool    `json:"mentorshipOnly,omitempty"`
	Industries     []string `json:"industries,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// Result is one scored candidate with its explainability breakdown.
type Result struct {
	CandidateID       string   `json:"candidateId"`
	Name              string   `json:"name"`
	Industry          string   `json:"industry,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Score             int      `json:"score"`
	SkillOverlap      int      `json:"skillOverlap"`
	TagOverlap        int      `json:"tagOverlap"`
	MutualConnections int      `json:"mutualConnections"`
}

// ProfileRepository is the external collaborator holding profiles.
type ProfileRepository interface {
	// GetProfile fetches one profile by id, returning (nil, nil) when absent.
	GetProfile(ctx context.Context, id string) (*Profile, error)
	// QueryCandidates returns unsuspended profiles matching the filter.
	QueryCandidates(ctx context.Context, f Filter) ([]Profile, error)
}
