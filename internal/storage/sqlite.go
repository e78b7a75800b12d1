package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reviewlens/reviewlens/internal/catalog"
	"github.com/reviewlens/reviewlens/internal/extraction"
	"github.com/reviewlens/reviewlens/internal/pipeline"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding cached search results and the
// product catalog. It satisfies pipeline.Cache, catalog.ProductStore,
// and catalog.SnapshotLoader.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "reviewlens.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Search results ---

// SaveSearchResult replaces the stored result for a query. The query is
// lower-cased; concurrent writers for the same key are last-writer-wins.
func (s *Store) SaveSearchResult(query string, res pipeline.Result) error {
	query = strings.ToLower(query)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reviews WHERE query = ?`, query); err != nil {
		return fmt.Errorf("clearing previous reviews: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`
		INSERT INTO search_results (query, overall_decision, created_at) VALUES (?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET overall_decision = excluded.overall_decision, created_at = excluded.created_at`,
		query, res.OverallDecision, now,
	); err != nil {
		return fmt.Errorf("saving search result: %w", err)
	}

	for i, r := range res.Reviews {
		var stars sql.NullInt64
		if r.StarRating != nil {
			stars = sql.NullInt64{Int64: int64(*r.StarRating), Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO reviews (query, position, source, url, product_name, review_summary, pros, cons, sentiment, is_product_of_interest, post_id, detail_score, balanced_score, well_written_score, star_rating)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			query, i, r.Source, r.URL, r.ProductName, r.Summary,
			encodeStrings(r.Pros), encodeStrings(r.Cons), r.Sentiment,
			r.IsProductOfInterest, r.PostID,
			r.DetailScore, r.BalancedScore, r.WellWrittenScore, stars,
		); err != nil {
			return fmt.Errorf("saving review %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetSearchResult returns the cached result for a lower-cased query,
// with ok=false on a miss.
func (s *Store) GetSearchResult(query string) (pipeline.Result, bool, error) {
	query = strings.ToLower(query)

	var decision string
	err := s.db.QueryRow(`SELECT overall_decision FROM search_results WHERE query = ?`, query).Scan(&decision)
	if err == sql.ErrNoRows {
		return pipeline.Result{}, false, nil
	}
	if err != nil {
		return pipeline.Result{}, false, err
	}

	rows, err := s.db.Query(`
		SELECT source, url, product_name, review_summary, pros, cons, sentiment, is_product_of_interest, post_id, detail_score, balanced_score, well_written_score, star_rating
		FROM reviews WHERE query = ? ORDER BY position ASC`, query,
	)
	if err != nil {
		return pipeline.Result{}, false, err
	}
	defer rows.Close()

	reviews := []extraction.ReviewJudgment{}
	for rows.Next() {
		var r extraction.ReviewJudgment
		var pros, cons string
		var stars sql.NullInt64
		if err := rows.Scan(&r.Source, &r.URL, &r.ProductName, &r.Summary, &pros, &cons,
			&r.Sentiment, &r.IsProductOfInterest, &r.PostID,
			&r.DetailScore, &r.BalancedScore, &r.WellWrittenScore, &stars); err != nil {
			return pipeline.Result{}, false, err
		}
		r.Pros = decodeStrings(pros)
		r.Cons = decodeStrings(cons)
		if stars.Valid {
			v := int(stars.Int64)
			r.StarRating = &v
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return pipeline.Result{}, false, err
	}

	return pipeline.Result{Reviews: reviews, OverallDecision: decision}, true, nil
}

// SearchQueries returns every cached query string in alphabetical order.
func (s *Store) SearchQueries() ([]string, error) {
	rows, err := s.db.Query(`SELECT query FROM search_results ORDER BY query ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queries := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// --- Products ---

// SaveProduct upserts canonical attributes keyed by lower-cased name.
func (s *Store) SaveProduct(name string, attrs catalog.Attributes) error {
	var verificationDate sql.NullString
	if !attrs.VerificationDate.IsZero() {
		verificationDate = sql.NullString{
			String: attrs.VerificationDate.UTC().Format(time.RFC3339),
			Valid:  true,
		}
	}
	_, err := s.db.Exec(`
		INSERT INTO products (name, brand, model, category, tier, release_year, price_range, key_features, confidence_score, verified, verification_date, source_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			brand = excluded.brand,
			model = excluded.model,
			category = excluded.category,
			tier = excluded.tier,
			release_year = excluded.release_year,
			price_range = excluded.price_range,
			key_features = excluded.key_features,
			confidence_score = excluded.confidence_score,
			verified = excluded.verified,
			verification_date = excluded.verification_date,
			source_url = excluded.source_url,
			updated_at = excluded.updated_at`,
		strings.ToLower(name), attrs.Brand, attrs.Model, attrs.Category, attrs.Tier,
		attrs.ReleaseYear, attrs.PriceRange, encodeStrings(attrs.KeyFeatures),
		attrs.ConfidenceScore, attrs.Verified, verificationDate, attrs.SourceURL,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetProduct looks a product up by lower-cased name, with ok=false when
// it is not in the catalog.
func (s *Store) GetProduct(name string) (catalog.Attributes, bool, error) {
	attrs, err := s.scanProduct(s.db.QueryRow(`
		SELECT brand, model, category, tier, release_year, price_range, key_features, confidence_score, verified, verification_date, source_url
		FROM products WHERE name = ?`, strings.ToLower(name),
	))
	if err == sql.ErrNoRows {
		return catalog.Attributes{}, false, nil
	}
	if err != nil {
		return catalog.Attributes{}, false, err
	}
	return attrs, true, nil
}

// LoadSnapshot reads the whole catalog into an immutable snapshot.
func (s *Store) LoadSnapshot() (catalog.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT name, brand, model, category, tier, release_year, price_range, key_features, confidence_score, verified, verification_date, source_url
		FROM products ORDER BY name ASC`,
	)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	defer rows.Close()

	products := make(map[string]catalog.Attributes)
	for rows.Next() {
		var name, keyFeatures string
		var verificationDate sql.NullString
		var attrs catalog.Attributes
		if err := rows.Scan(&name, &attrs.Brand, &attrs.Model, &attrs.Category, &attrs.Tier,
			&attrs.ReleaseYear, &attrs.PriceRange, &keyFeatures,
			&attrs.ConfidenceScore, &attrs.Verified, &verificationDate, &attrs.SourceURL); err != nil {
			return catalog.Snapshot{}, err
		}
		attrs.KeyFeatures = decodeStrings(keyFeatures)
		if verificationDate.Valid {
			if t, err := time.Parse(time.RFC3339, verificationDate.String); err == nil {
				attrs.VerificationDate = t
			}
		}
		products[name] = attrs
	}
	if err := rows.Err(); err != nil {
		return catalog.Snapshot{}, err
	}

	return catalog.NewSnapshot(products), nil
}

func (s *Store) scanProduct(row *sql.Row) (catalog.Attributes, error) {
	var keyFeatures string
	var verificationDate sql.NullString
	var attrs catalog.Attributes
	err := row.Scan(&attrs.Brand, &attrs.Model, &attrs.Category, &attrs.Tier,
		&attrs.ReleaseYear, &attrs.PriceRange, &keyFeatures,
		&attrs.ConfidenceScore, &attrs.Verified, &verificationDate, &attrs.SourceURL)
	if err != nil {
		return catalog.Attributes{}, err
	}
	attrs.KeyFeatures = decodeStrings(keyFeatures)
	if verificationDate.Valid {
		if t, err := time.Parse(time.RFC3339, verificationDate.String); err == nil {
			attrs.VerificationDate = t
		}
	}
	return attrs, nil
}
