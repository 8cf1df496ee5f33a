package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alumni-match/internal/identity"

	"github.com/lib/pq"
)

// PostgresRepository implements ProfileRepository over the profiles table.
// Role, suspension, mentorship and industry filters are pushed into SQL;
// scoring stays in the engine. Candidate ordering by id keeps the input to
// ranking deterministic.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repository on an existing connection pool.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const profileColumns = `id, name, role, industry, skills, interests, tags, connections, mentorship_available, suspended`

func scanProfile(scan func(...interface{}) error) (*Profile, error) {
	var p Profile
	var role string
	var skills, interests, tagList, connections pq.StringArray
	err := scan(
		&p.ID, &p.Name, &role, &p.Industry,
		&skills, &interests, &tagList, &connections,
		&p.MentorshipAvailable, &p.Suspended,
	)
	if err != nil {
		return nil, err
	}
	p.Role = identity.Role(role)
	p.Skills = skills
	p.Interests = interests
	p.Tags = tagList
	p.Connections = connections
	return &p, nil
}

// GetProfile fetches one profile by id, (nil, nil) when absent.
func (r *PostgresRepository) GetProfile(ctx context.Context, id string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)

	p, err := scanProfile(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return p, nil
}

// QueryCandidates returns unsuspended profiles matching the filter.
func (r *PostgresRepository) QueryCandidates(ctx context.Context, f Filter) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 AND suspended = false`
	args := []interface{}{string(f.Role)}

	if f.MentorshipOnly != nil {
		args = append(args, *f.MentorshipOnly)
		query += fmt.Sprintf(" AND mentorship_available = $%d", len(args))
	}
	if len(f.Industries) > 0 {
		args = append(args, pq.Array(f.Industries))
		query += fmt.Sprintf(" AND industry = ANY($%d)", len(args))
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}
