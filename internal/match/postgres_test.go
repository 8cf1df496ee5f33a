package match

import (
	"context"
	"testing"

	"alumni-match/internal/identity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{
	"id", "name", "role", "industry", "skills", "interests", "tags",
	"connections", "mentorship_available", "suspended",
}

func TestPostgresGetProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			"u-1", "Ada", "student", "Technology",
			`{python,"data science"}`, `{ml}`, `{}`, `{u-2,u-3}`,
			false, false,
		))

	repo := NewPostgresRepository(db)
	p, err := repo.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "u-1", p.ID)
	assert.Equal(t, identity.RoleStudent, p.Role)
	assert.Equal(t, []string{"python", "data science"}, p.Skills)
	assert.Equal(t, []string{"u-2", "u-3"}, p.Connections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfileAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(profileCols))

	repo := NewPostgresRepository(db)
	p, err := repo.GetProfile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPostgresQueryCandidatesBaseFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE role = \$1 AND suspended = false ORDER BY id`).
		WithArgs("alumni").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("a-1", "Grace", "alumni", "Technology", `{python}`, `{}`, `{}`, `{}`, true, false).
			AddRow("a-2", "Linus", "alumni", "Finance", `{go}`, `{}`, `{}`, `{}`, false, false))

	repo := NewPostgresRepository(db)
	got, err := repo.QueryCandidates(context.Background(), Filter{Role: identity.RoleAlumni})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a-1", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresQueryCandidatesOptionalFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mentorship := true
	mock.ExpectQuery(`SELECT .+ WHERE role = \$1 AND suspended = false AND mentorship_available = \$2 AND industry = ANY\(\$3\) ORDER BY id`).
		WithArgs("alumni", true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("a-1", "Grace", "alumni", "Technology", `{python}`, `{}`, `{}`, `{}`, true, false))

	repo := NewPostgresRepository(db)
	got, err := repo.QueryCandidates(context.Background(), Filter{
		Role:           identity.RoleAlumni,
		MentorshipOnly: &mentorship,
		Industries:     []string{"Technology"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].MentorshipAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
