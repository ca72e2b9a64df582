package taxparams

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/database"
	"github.com/aristath/taxfolio/internal/domain"
)

//go:embed seed/*.json
var seedFS embed.FS

// Store is the sqlite-backed repository for tax-parameter tables.
// On first open it seeds any year present in the embedded defaults that is
// not already stored, so operator edits to a year survive restarts. Loaded
// years are cached for the process lifetime: the tables are read-only once
// served (the concurrency contract the pure engines rely on).
type Store struct {
	db  *database.DB
	log zerolog.Logger

	mu    sync.RWMutex
	cache map[int]*YearParams
}

// NewStore opens the store, creating the schema and seeding embedded
// defaults for missing years.
func NewStore(db *database.DB, log zerolog.Logger) (*Store, error) {
	s := &Store{
		db:    db,
		log:   log.With().Str("repository", "taxparams").Logger(),
		cache: make(map[int]*YearParams),
	}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tax_parameters (
			year       INTEGER PRIMARY KEY,
			params     TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tax_parameters table: %w", err)
	}
	return nil
}

// seed inserts embedded defaults for years that have no stored row yet.
func (s *Store) seed() error {
	entries, err := fs.ReadDir(seedFS, "seed")
	if err != nil {
		return fmt.Errorf("failed to read embedded parameter seeds: %w", err)
	}

	for _, entry := range entries {
		data, err := seedFS.ReadFile("seed/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read seed %s: %w", entry.Name(), err)
		}

		var params YearParams
		if err := json.Unmarshal(data, &params); err != nil {
			return fmt.Errorf("invalid seed %s: %w", entry.Name(), err)
		}

		res, err := s.db.Exec(`
			INSERT OR IGNORE INTO tax_parameters (year, params, updated_at)
			VALUES (?, ?, ?)
		`, params.Year, string(data), time.Now().Unix())
		if err != nil {
			return fmt.Errorf("failed to seed parameters for %d: %w", params.Year, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.log.Info().Int("year", params.Year).Msg("Seeded tax parameters")
		}
	}
	return nil
}

// Year returns the parameter table for a tax year.
// Unknown years return domain.ErrYearNotConfigured.
func (s *Store) Year(year int) (*YearParams, error) {
	s.mu.RLock()
	if params, ok := s.cache[year]; ok {
		s.mu.RUnlock()
		return params, nil
	}
	s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow("SELECT params FROM tax_parameters WHERE year = ?", year).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("year %d: %w", year, domain.ErrYearNotConfigured)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters for %d: %w", year, err)
	}

	params := &YearParams{}
	if err := json.Unmarshal([]byte(raw), params); err != nil {
		return nil, fmt.Errorf("corrupt parameters for %d: %w", year, err)
	}

	s.mu.Lock()
	s.cache[year] = params
	s.mu.Unlock()
	return params, nil
}

// Put stores or replaces a year's parameter table.
func (s *Store) Put(params *YearParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode parameters for %d: %w", params.Year, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO tax_parameters (year, params, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET
			params = excluded.params,
			updated_at = excluded.updated_at
	`, params.Year, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store parameters for %d: %w", params.Year, err)
	}

	s.mu.Lock()
	s.cache[params.Year] = params
	s.mu.Unlock()
	return nil
}

// Years lists the configured tax years in ascending order.
func (s *Store) Years() ([]int, error) {
	rows, err := s.db.Query("SELECT year FROM tax_parameters")
	if err != nil {
		return nil, fmt.Errorf("failed to list tax years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan tax year: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Ints(years)
	return years, nil
}
