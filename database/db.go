package database

import (
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// Store wraps the Postgres connection. All access goes through methods,
// no package-level handle.
type Store struct {
	db *sql.DB
}

// ─── Models ──────────────────────────────────────────────────────────────────

type SearchRecord struct {
	ID            string    `json:"id"`
	Query         string    `json:"query"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    string    `json:"return_date"`
	AggregateJSON string    `json:"aggregate_json"`
	BudgetJSON    string    `json:"budget_json"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}

type ItineraryRecord struct {
	ID            string    `json:"id"`
	SearchID      string    `json:"search_id"`
	ItineraryJSON string    `json:"itinerary_json"`
	BudgetJSON    string    `json:"budget_json"`
	PDFData       []byte    `json:"pdf_data,omitempty"` // stored in DB, no filesystem needed
	TravelerName  string    `json:"traveler_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// ─── Connect ─────────────────────────────────────────────────────────────────

// Connect opens the database, waits for it to become reachable and runs
// migrations. The DATABASE_URL env var overrides the dsn when set.
func Connect(dsn string) (*Store, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		dsn = url
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Hosted Postgres may take a moment to accept connections.
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	log.Println("✅ Database connected and migrated")
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id             TEXT PRIMARY KEY,
			query          TEXT,
			origin         TEXT NOT NULL,
			destination    TEXT NOT NULL,
			departure_date TEXT NOT NULL,
			return_date    TEXT,
			aggregate_json TEXT,
			budget_json    TEXT,
			summary        TEXT,
			created_at     TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS itineraries (
			id             TEXT PRIMARY KEY,
			search_id      TEXT REFERENCES searches(id),
			itinerary_json TEXT NOT NULL,
			budget_json    TEXT,
			pdf_data       BYTEA,
			traveler_name  TEXT,
			created_at     TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_itineraries_search_id
			ON itineraries(search_id)`,

		`CREATE INDEX IF NOT EXISTS idx_searches_created_at
			ON searches(created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func (s *Store) SaveSearch(r *SearchRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO searches (id, query, origin, destination, departure_date, return_date, aggregate_json, budget_json, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.Query, r.Origin, r.Destination, r.DepartureDate, r.ReturnDate,
		r.AggregateJSON, r.BudgetJSON, r.Summary)
	return err
}

func (s *Store) GetSearch(id string) (*SearchRecord, error) {
	r := &SearchRecord{}
	err := s.db.QueryRow(`
		SELECT id, query, origin, destination, departure_date, return_date, aggregate_json, budget_json, summary, created_at
		FROM searches WHERE id = $1`, id).
		Scan(&r.ID, &r.Query, &r.Origin, &r.Destination, &r.DepartureDate, &r.ReturnDate,
			&r.AggregateJSON, &r.BudgetJSON, &r.Summary, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) SaveItinerary(r *ItineraryRecord) error {
	searchID := sql.NullString{String: r.SearchID, Valid: r.SearchID != ""}
	_, err := s.db.Exec(`
		INSERT INTO itineraries (id, search_id, itinerary_json, budget_json, pdf_data, traveler_name)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, searchID, r.ItineraryJSON, r.BudgetJSON, r.PDFData, r.TravelerName)
	return err
}

func (s *Store) GetItinerary(id string) (*ItineraryRecord, error) {
	r := &ItineraryRecord{}
	var searchID sql.NullString
	err := s.db.QueryRow(`
		SELECT id, search_id, itinerary_json, budget_json, pdf_data, traveler_name, created_at
		FROM itineraries WHERE id = $1`, id).
		Scan(&r.ID, &searchID, &r.ItineraryJSON, &r.BudgetJSON,
			&r.PDFData, &r.TravelerName, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.SearchID = searchID.String
	return r, nil
}

func (s *Store) GetItineraryBySearchID(searchID string) (*ItineraryRecord, error) {
	r := &ItineraryRecord{}
	var sid sql.NullString
	err := s.db.QueryRow(`
		SELECT id, search_id, itinerary_json, budget_json, pdf_data, traveler_name, created_at
		FROM itineraries WHERE search_id = $1
		ORDER BY created_at DESC LIMIT 1`, searchID).
		Scan(&r.ID, &sid, &r.ItineraryJSON, &r.BudgetJSON,
			&r.PDFData, &r.TravelerName, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.SearchID = sid.String
	return r, nil
}
