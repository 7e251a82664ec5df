// Package store persists campaigns in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const migration = `
CREATE TABLE IF NOT EXISTS campaigns (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	person_tags  TEXT NOT NULL DEFAULT '[]',
	company_tags TEXT NOT NULL DEFAULT '[]',
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns(created_at);
DROP INDEX IF EXISTS idx_campaigns_name;
CREATE UNIQUE INDEX IF NOT EXISTS idx_campaigns_name_unique ON campaigns(name);
`

// Store is a SQLite-backed campaign repository.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and runs the migration.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "campaign store: mkdir %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "campaign store: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "campaign store: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, migration); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "campaign store: migrate")
	}
	slog.Info("campaign store ready", "path", path)
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row scanner) (campaign.Campaign, error) {
	var (
		c                  campaign.Campaign
		personRaw, compRaw string
		createdRaw         string
	)
	if err := row.Scan(&c.ID, &c.Name, &personRaw, &compRaw, &createdRaw); err != nil {
		return campaign.Campaign{}, err
	}
	if err := json.Unmarshal([]byte(personRaw), &c.PersonTags); err != nil {
		return campaign.Campaign{}, eris.Wrapf(err, "campaign %s: person_tags", c.ID)
	}
	if err := json.Unmarshal([]byte(compRaw), &c.CompanyTags); err != nil {
		return campaign.Campaign{}, eris.Wrapf(err, "campaign %s: company_tags", c.ID)
	}
	created, err := time.Parse(timeLayout, createdRaw)
	if err != nil {
		created, err = time.Parse(time.RFC3339Nano, createdRaw)
		if err != nil {
			return campaign.Campaign{}, eris.Wrapf(err, "campaign %s: created_at", c.ID)
		}
	}
	c.CreatedAt = created
	return c, nil
}

// List returns every campaign, newest first.
func (s *Store) List(ctx context.Context) ([]campaign.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, person_tags, company_tags, created_at
		FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "campaign store: list")
	}
	defer rows.Close()

	out := make([]campaign.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, eris.Wrap(err, "campaign store: scan")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "campaign store: rows")
}

// Get returns one campaign or a NOT_FOUND coded error.
func (s *Store) Get(ctx context.Context, id string) (campaign.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, person_tags, company_tags, created_at
		FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return campaign.Campaign{}, apperr.New(apperr.CodeNotFound, "Campaign not found", nil)
	}
	if err != nil {
		return campaign.Campaign{}, eris.Wrapf(err, "campaign store: get %s", id)
	}
	return c, nil
}

// Create stores a new campaign with a fresh id and creation time.
func (s *Store) Create(ctx context.Context, in campaign.Campaign) (campaign.Campaign, error) {
	c := in.Normalize()
	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()
	if err := s.validate(ctx, c); err != nil {
		return campaign.Campaign{}, err
	}
	if err := s.write(ctx, c); err != nil {
		return campaign.Campaign{}, err
	}
	slog.Info("campaign created", "campaign_id", c.ID, "name", c.Name)
	return c, nil
}

// Update replaces name and tags of an existing campaign, keeping created_at.
func (s *Store) Update(ctx context.Context, id string, in campaign.Campaign) (campaign.Campaign, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return campaign.Campaign{}, err
	}
	c := in.Normalize()
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	if err := s.validate(ctx, c); err != nil {
		return campaign.Campaign{}, err
	}
	if err := s.write(ctx, c); err != nil {
		return campaign.Campaign{}, err
	}
	slog.Info("campaign updated", "campaign_id", c.ID, "name", c.Name)
	return c, nil
}

// Delete removes a campaign. Deleting an unknown id succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id); err != nil {
		return eris.Wrapf(err, "campaign store: delete %s", id)
	}
	slog.Info("campaign deleted", "campaign_id", id)
	return nil
}

// Seed creates campaigns whose names are not stored yet and returns how many were added.
func (s *Store) Seed(ctx context.Context, seeds []campaign.Campaign) (int, error) {
	added := 0
	for _, seed := range seeds {
		taken, err := s.nameTaken(ctx, strings.TrimSpace(seed.Name), "")
		if err != nil {
			return added, err
		}
		if taken {
			continue
		}
		if _, err := s.Create(ctx, seed); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *Store) validate(ctx context.Context, c campaign.Campaign) error {
	if err := c.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	taken, err := s.nameTaken(ctx, c.Name, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("campaign name already exists: " + c.Name)
	}
	return nil
}

func (s *Store) nameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM campaigns WHERE name = ? AND id != ?`, name, exceptID).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "campaign store: name lookup")
	}
	return n > 0, nil
}

func (s *Store) write(ctx context.Context, c campaign.Campaign) error {
	person, err := json.Marshal(c.PersonTags)
	if err != nil {
		return eris.Wrap(err, "campaign store: marshal person_tags")
	}
	company, err := json.Marshal(c.CompanyTags)
	if err != nil {
		return eris.Wrap(err, "campaign store: marshal company_tags")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, person_tags, company_tags, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			person_tags = excluded.person_tags,
			company_tags = excluded.company_tags`,
		c.ID, c.Name, string(person), string(company), c.CreatedAt.UTC().Format(timeLayout))
	if isConstraint(err) {
		return apperr.Validation("campaign name already exists: " + c.Name)
	}
	return eris.Wrapf(err, "campaign store: write %s", c.ID)
}

// isConstraint reports a constraint violation. The only one a write can hit
// is the unique campaign name; id conflicts are upserts.
func isConstraint(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
