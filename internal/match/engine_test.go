package match

import (
	"context"
	"fmt"
	"testing"

	"alumni-match/internal/common/errors"
	"alumni-match/internal/common/logger"
	"alumni-match/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(profiles ...Profile) *Engine {
	repo := NewMemoryRepository()
	repo.Seed(profiles...)
	return NewEngine(repo, 20, 100, logger.NewNoOpLogger())
}

func studentRequester() Profile {
	return Profile{
		ID:        "s-1",
		Name:      "Student One",
		Role:      identity.RoleStudent,
		Industry:  "Technology",
		Skills:    []string{"python", "data-science"},
		Interests: nil,
	}
}

func TestMatchSkillOverlapRanking(t *testing.T) {
	// Spec example: requester {python, data-science}; A overlaps on one skill,
	// B on two, so score(B)=20 > score(A)=10 and B ranks first.
	e := newTestEngine(
		studentRequester(),
		Profile{ID: "a-A", Name: "A", Role: identity.RoleAlumni, Skills: []string{"python", "ml"}},
		Profile{ID: "a-B", Name: "B", Role: identity.RoleAlumni, Skills: []string{"python", "data-science"}},
	)

	results, err := e.Match(context.Background(), "s-1", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a-B", results[0].CandidateID)
	assert.Equal(t, 20, results[0].Score)
	assert.Equal(t, 2, results[0].SkillOverlap)
	assert.Equal(t, "a-A", results[1].CandidateID)
	assert.Equal(t, 10, results[1].Score)
}

func TestMatchScoreBreakdown(t *testing.T) {
	requester := studentRequester()
	requester.Interests = []string{"data science", "ml"}
	requester.Skills = []string{"python"}
	requester.Connections = []string{"c-1", "c-2"}

	e := newTestEngine(
		requester,
		Profile{
			ID: "a-1", Name: "Mentor", Role: identity.RoleAlumni,
			Industry:    "Technology",
			Skills:      []string{"data science", "python", "ml"},
			Tags:        []string{"ml"},
			Connections: []string{"c-2", "c-9"},
		},
	)

	results, err := e.Match(context.Background(), "s-1", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 3, r.SkillOverlap)
	assert.Equal(t, 1, r.TagOverlap)
	assert.Equal(t, 1, r.MutualConnections)
	// 3*10 + 1*5 + 1*3 + industry 8
	assert.Equal(t, 46, r.Score)
}

func TestMatchIndustryIsCaseSensitive(t *testing.T) {
	requester := studentRequester()
	requester.Industry = "technology"

	e := newTestEngine(
		requester,
		Profile{ID: "a-1", Name: "X", Role: identity.RoleAlumni, Industry: "Technology",
			Skills: []string{"python"}},
	)

	results, err := e.Match(context.Background(), "s-1", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].Score, "industry bonus requires exact equality on the stored value")
}

func TestMatchComplementaryRole(t *testing.T) {
	alumniRequester := Profile{
		ID: "al-1", Role: identity.RoleAlumni, Skills: []string{"go"},
	}
	e := newTestEngine(
		alumniRequester,
		Profile{ID: "s-9", Role: identity.RoleStudent, Skills: []string{"go"}},
		Profile{ID: "al-2", Role: identity.RoleAlumni, Skills: []string{"go"}},
	)

	results, err := e.Match(context.Background(), "al-1", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s-9", results[0].CandidateID, "alumni match against students")
}

func TestMatchExcludesSuspended(t *testing.T) {
	e := newTestEngine(
		studentRequester(),
		Profile{ID: "a-1", Role: identity.RoleAlumni, Skills: []string{"python"}, Suspended: true},
		Profile{ID: "a-2", Role: identity.RoleAlumni, Skills: []string{"python"}},
	)

	results, err := e.Match(context.Background(), "s-1", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a-2", results[0].CandidateID)
}

func TestMatchMentorshipAndIndustryFilters(t *testing.T) {
	e := newTestEngine(
		studentRequester(),
		Profile{ID: "a-1", Role: identity.RoleAlumni, Industry: "Technology", MentorshipAvailable: true, Skills: []string{"python"}},
		Profile{ID: "a-2", Role: identity.RoleAlumni, Industry: "Technology", MentorshipAvailable: false, Skills: []string{"python"}},
		Profile{ID: "a-3", Role: identity.RoleAlumni, Industry: "Finance", MentorshipAvailable: true, Skills: []string{"python"}},
	)

	mentorship := true
	results, err := e.Match(context.Background(), "s-1", Options{
		MentorshipOnly: &mentorship,
		Industries:     []string{"Technology"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a-1", results[0].CandidateID)
}

func TestMatchLimitSemantics(t *testing.T) {
	profiles := []Profile{studentRequester()}
	for i := 0; i < 30; i++ {
		profiles = append(profiles, Profile{
			ID:     fmt.Sprintf("a-%02d", i),
			Role:   identity.RoleAlumni,
			Skills: []string{"python"},
		})
	}
	e := newTestEngine(profiles...)
	ctx := context.Background()

	tests := []struct {
		name    string
		limit   int
		wantLen int
	}{
		{"default when unset", 0, 20},
		{"negative treated as default", -5, 20},
		{"explicit limit", 7, 7},
		{"capped at max", 500, 30}, // maxLimit 100 but only 30 candidates
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.Match(ctx, "s-1", Options{Limit: tt.limit})
			require.NoError(t, err)
			assert.Len(t, results, tt.wantLen)
		})
	}
}

func TestMatchDeterministicOrdering(t *testing.T) {
	// Identical scores everywhere: tie-break must make repeat runs identical.
	profiles := []Profile{studentRequester()}
	for _, id := range []string{"a-z", "a-m", "a-a", "a-q"} {
		profiles = append(profiles, Profile{ID: id, Role: identity.RoleAlumni, Skills: []string{"python"}})
	}
	e := newTestEngine(profiles...)
	ctx := context.Background()

	first, err := e.Match(ctx, "s-1", Options{})
	require.NoError(t, err)
	second, err := e.Match(ctx, "s-1", Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "a-a", first[0].CandidateID, "equal scores fall back to id order")
}

func TestMatchRequesterNotFound(t *testing.T) {
	e := newTestEngine()
	_, err := e.Match(context.Background(), "ghost", Options{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestMatchExcludesRequester(t *testing.T) {
	requester := studentRequester()
	requester.Role = identity.RoleAlumni // alumni requester matching students
	e := newTestEngine(
		requester,
		Profile{ID: "s-2", Role: identity.RoleStudent, Skills: []string{"python"}},
	)

	results, err := e.Match(context.Background(), "s-1", Options{})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "s-1", r.CandidateID)
	}
}
