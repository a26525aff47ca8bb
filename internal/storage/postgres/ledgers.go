package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	candidacyModels "nhc/internal/candidacy/models"
	electionModels "nhc/internal/election/models"
	periodModels "nhc/internal/period/models"
	"nhc/pkg/calendar"
)

const periodColumns = `id, zone_id, kind, start_date, end_date, status, created_at, ended_at`

func scanPeriod(row scanner) (*periodModels.Period, error) {
	var (
		p       periodModels.Period
		endedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.ZoneID, &p.Kind, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	p.EndedAt = nullTime(endedAt)
	return &p, nil
}

func (s *Store) CreatePeriod(ctx context.Context, p *periodModels.Period) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO periods (`+periodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ZoneID, string(p.Kind), p.StartDate, p.EndDate, string(p.Status), p.CreatedAt, p.EndedAt)
	return writeErr("create period", err)
}

func (s *Store) UpdatePeriod(ctx context.Context, p *periodModels.Period) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE periods SET start_date = $2, end_date = $3, status = $4, ended_at = $5
		WHERE id = $1`,
		p.ID, p.StartDate, p.EndDate, string(p.Status), p.EndedAt)
	return expectRow("update period", res, err)
}

// FindPeriodByID takes a share lock inside a transaction: ballots wait for a
// running close and then see the election as ended.
func (s *Store) FindPeriodByID(ctx context.Context, id uuid.UUID) (*periodModels.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE id = $1`
	if s.sqlTx != nil {
		query += ` FOR SHARE`
	}
	p, err := scanPeriod(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, readErr("find period", err)
	}
	return p, nil
}

// FindLatestPeriod returns the most recently scheduled period of kind. Inside
// a transaction the row stays locked, so two closes of one election
// serialize and the second sees the first one's endedAt.
func (s *Store) FindLatestPeriod(ctx context.Context, zoneID uuid.UUID, kind periodModels.Kind) (*periodModels.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods
		WHERE zone_id = $1 AND kind = $2
		ORDER BY seq DESC LIMIT 1`
	if s.sqlTx != nil {
		query += ` FOR UPDATE`
	}
	p, err := scanPeriod(s.q.QueryRowContext(ctx, query, zoneID, string(kind)))
	if err != nil {
		return nil, readErr("find latest period", err)
	}
	return p, nil
}

func (s *Store) ListUnendedPeriods(ctx context.Context, zoneID uuid.UUID, kind periodModels.Kind) ([]*periodModels.Period, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+periodColumns+` FROM periods
		WHERE zone_id = $1 AND kind = $2 AND status <> $3
		ORDER BY seq FOR UPDATE`, zoneID, string(kind), string(periodModels.StatusEnded))
	if err != nil {
		return nil, fmt.Errorf("list unended periods: %w", err)
	}
	return collect(rows, "list unended periods", scanPeriod)
}

func (s *Store) ListOpenPeriods(ctx context.Context, kind periodModels.Kind, today calendar.Date) ([]*periodModels.Period, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+periodColumns+` FROM periods
		WHERE kind = $1 AND status <> $2 AND start_date <= $3 AND end_date >= $3
		ORDER BY seq`, string(kind), string(periodModels.StatusEnded), today)
	if err != nil {
		return nil, fmt.Errorf("list open periods: %w", err)
	}
	return collect(rows, "list open periods", scanPeriod)
}

const candidacyColumns = `id, personal_id, zone_id, nomination_period_id, category, status, support_count, is_eligible, created_at`

func scanCandidacy(row scanner) (*candidacyModels.Candidacy, error) {
	var c candidacyModels.Candidacy
	err := row.Scan(&c.ID, &c.PersonalID, &c.ZoneID, &c.NominationPeriodID, &c.Category, &c.Status,
		&c.SupportCount, &c.IsEligible, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCandidacy(ctx context.Context, c *candidacyModels.Candidacy) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO candidacies (`+candidacyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.PersonalID, c.ZoneID, c.NominationPeriodID, c.Category, string(c.Status),
		c.SupportCount, c.IsEligible, c.CreatedAt)
	return writeErr("create candidacy", err)
}

// FindCandidacyByID locks the row inside a transaction so concurrent recounts
// of the same candidacy serialize.
func (s *Store) FindCandidacyByID(ctx context.Context, id uuid.UUID) (*candidacyModels.Candidacy, error) {
	query := `SELECT ` + candidacyColumns + ` FROM candidacies WHERE id = $1`
	if s.sqlTx != nil {
		query += ` FOR UPDATE`
	}
	c, err := scanCandidacy(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, readErr("find candidacy", err)
	}
	return c, nil
}

func (s *Store) UpdateCandidacy(ctx context.Context, c *candidacyModels.Candidacy) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE candidacies SET status = $2, support_count = $3, is_eligible = $4
		WHERE id = $1`,
		c.ID, string(c.Status), c.SupportCount, c.IsEligible)
	return expectRow("update candidacy", res, err)
}

func (s *Store) HasCandidacy(ctx context.Context, personalID string, periodID uuid.UUID) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM candidacies WHERE personal_id = $1 AND nomination_period_id = $2)`,
		personalID, periodID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check candidacy: %w", err)
	}
	return exists, nil
}

func (s *Store) ListCandidaciesByPeriod(ctx context.Context, periodID uuid.UUID) ([]*candidacyModels.Candidacy, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+candidacyColumns+` FROM candidacies
		WHERE nomination_period_id = $1 ORDER BY created_at, id`, periodID)
	if err != nil {
		return nil, fmt.Errorf("list candidacies: %w", err)
	}
	return collect(rows, "list candidacies", scanCandidacy)
}

func (s *Store) ListCandidaciesByZone(ctx context.Context, zoneID uuid.UUID) ([]*candidacyModels.Candidacy, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+candidacyColumns+` FROM candidacies
		WHERE zone_id = $1 ORDER BY created_at, id`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list candidacies: %w", err)
	}
	return collect(rows, "list candidacies", scanCandidacy)
}

const supportColumns = `id, candidacy_id, supporter_personal_id, zone_id, nomination_period_id, category, period_end_date, created_at`

func scanSupport(row scanner) (*candidacyModels.Support, error) {
	var sup candidacyModels.Support
	err := row.Scan(&sup.ID, &sup.CandidacyID, &sup.SupporterPersonalID, &sup.ZoneID, &sup.NominationPeriodID,
		&sup.Category, &sup.PeriodEndDate, &sup.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// CreateSupport relies on supports_candidacy_supporter_key and
// supports_period_category_supporter_key; the second is reported with
// ErrCategorySupported.
func (s *Store) CreateSupport(ctx context.Context, sup *candidacyModels.Support) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO supports (`+supportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sup.ID, sup.CandidacyID, sup.SupporterPersonalID, sup.ZoneID, sup.NominationPeriodID,
		sup.Category, sup.PeriodEndDate, sup.CreatedAt)
	return writeErr("create support", err)
}

func (s *Store) CountSupports(ctx context.Context, candidacyID uuid.UUID) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT count(*) FROM supports WHERE candidacy_id = $1`, candidacyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count supports: %w", err)
	}
	return n, nil
}

func (s *Store) HasSupport(ctx context.Context, candidacyID uuid.UUID, supporterPersonalID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM supports WHERE candidacy_id = $1 AND supporter_personal_id = $2)`,
		candidacyID, supporterPersonalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check support: %w", err)
	}
	return exists, nil
}

func (s *Store) HasSupportInCategory(ctx context.Context, periodID uuid.UUID, category, supporterPersonalID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM supports
			WHERE nomination_period_id = $1 AND category = $2 AND supporter_personal_id = $3
		)`, periodID, category, supporterPersonalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category support: %w", err)
	}
	return exists, nil
}

func (s *Store) ListSupportsByZone(ctx context.Context, zoneID uuid.UUID) ([]*candidacyModels.Support, error) {
	return s.listSupports(ctx, `zone_id = $1`, zoneID)
}

func (s *Store) ListSupportsByCandidacy(ctx context.Context, candidacyID uuid.UUID) ([]*candidacyModels.Support, error) {
	return s.listSupports(ctx, `candidacy_id = $1`, candidacyID)
}

func (s *Store) ListSupportsBySupporter(ctx context.Context, supporterPersonalID string) ([]*candidacyModels.Support, error) {
	return s.listSupports(ctx, `supporter_personal_id = $1`, supporterPersonalID)
}

func (s *Store) listSupports(ctx context.Context, where string, arg any) ([]*candidacyModels.Support, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+supportColumns+` FROM supports WHERE `+where+` ORDER BY created_at DESC, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list supports: %w", err)
	}
	return collect(rows, "list supports", scanSupport)
}

const voteColumns = `id, election_id, zone_id, voter_personal_id, candidacy_id, period_end_date, created_at`

func scanVote(row scanner) (*electionModels.Vote, error) {
	var v electionModels.Vote
	err := row.Scan(&v.ID, &v.ElectionID, &v.ZoneID, &v.VoterPersonalID, &v.CandidacyID, &v.PeriodEndDate, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) CreateVote(ctx context.Context, v *electionModels.Vote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO votes (`+voteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.ElectionID, v.ZoneID, v.VoterPersonalID, v.CandidacyID, v.PeriodEndDate, v.CreatedAt)
	return writeErr("create vote", err)
}

func (s *Store) HasVoted(ctx context.Context, electionID uuid.UUID, voterPersonalID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM votes WHERE election_id = $1 AND voter_personal_id = $2)`,
		electionID, voterPersonalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return exists, nil
}

func (s *Store) ListVotesByElection(ctx context.Context, electionID uuid.UUID) ([]*electionModels.Vote, error) {
	return s.listVotes(ctx, `election_id = $1`, electionID)
}

func (s *Store) ListVotesByCandidacy(ctx context.Context, candidacyID uuid.UUID) ([]*electionModels.Vote, error) {
	return s.listVotes(ctx, `candidacy_id = $1`, candidacyID)
}

func (s *Store) listVotes(ctx context.Context, where string, arg any) ([]*electionModels.Vote, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+voteColumns+` FROM votes WHERE `+where+` ORDER BY created_at DESC, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return collect(rows, "list votes", scanVote)
}

func (s *Store) CountVotesByCandidacy(ctx context.Context, electionID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT candidacy_id, count(*) FROM votes WHERE election_id = $1 GROUP BY candidacy_id`, electionID)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	defer rows.Close()
	out := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("count votes: %w", err)
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	return out, nil
}

const resultColumns = `id, election_id, zone_id, candidacy_id, personal_id, first_name, last_name, category, total_votes, created_at`

func scanResult(row scanner) (*electionModels.Result, error) {
	var r electionModels.Result
	err := row.Scan(&r.ID, &r.ElectionID, &r.ZoneID, &r.CandidacyID, &r.PersonalID, &r.FirstName, &r.LastName,
		&r.Category, &r.TotalVotes, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateResult(ctx context.Context, r *electionModels.Result) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.ElectionID, r.ZoneID, r.CandidacyID, r.PersonalID, r.FirstName, r.LastName,
		r.Category, r.TotalVotes, r.CreatedAt)
	return writeErr("create result", err)
}

func (s *Store) ListResultsByElection(ctx context.Context, electionID uuid.UUID) ([]*electionModels.Result, error) {
	return s.listResults(ctx, `election_id = $1`, electionID)
}

func (s *Store) ListResultsByZone(ctx context.Context, zoneID uuid.UUID) ([]*electionModels.Result, error) {
	return s.listResults(ctx, `zone_id = $1`, zoneID)
}

func (s *Store) listResults(ctx context.Context, where string, arg any) ([]*electionModels.Result, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE `+where+` ORDER BY category, total_votes DESC, personal_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return collect(rows, "list results", scanResult)
}
