package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/ports"
)

// Store reads digest recipients and their watchlists from Postgres.
type Store struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var (
	_ ports.RecipientDirectory = (*Store)(nil)
	_ ports.WatchlistStore     = (*Store)(nil)
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewStore wires a sql.DB implementation.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// recipientsQuery selects every digest-opted-in user in stable order.
func (s *Store) recipientsQuery() (string, []any, error) {
	return s.builder.
		Select("email", "name", "country", "risk_profile", "preferred_industry").
		From("users").
		Where(sq.Eq{"digest_opt_in": true}).
		OrderBy("email").
		ToSql()
}

// ListRecipients returns every user opted in to the daily digest, in stable
// order.
func (s *Store) ListRecipients(ctx context.Context) ([]domain.Recipient, error) {
	query, args, err := s.recipientsQuery()
	if err != nil {
		return nil, fmt.Errorf("build recipients query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []domain.Recipient
	for rows.Next() {
		var r domain.Recipient
		if err := rows.Scan(&r.Email, &r.Name, &r.Country, &r.RiskProfile, &r.PreferredIndustry); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return recipients, nil
}

// watchlistQuery selects a user's symbols in the order they were added.
func (s *Store) watchlistQuery(email string) (string, []any, error) {
	return s.builder.
		Select("w.symbol").
		From("watchlists w").
		Join("users u ON u.id = w.user_id").
		Where(sq.Eq{"u.email": email}).
		OrderBy("w.added_at").
		ToSql()
}

// SymbolsForRecipient returns the watchlist symbols for the user identified
// by email. Graceful: a blank email or an unknown user yields an empty set,
// not an error.
func (s *Store) SymbolsForRecipient(ctx context.Context, email string) ([]string, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}

	query, args, err := s.watchlistQuery(email)
	if err != nil {
		return nil, fmt.Errorf("build watchlist query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return symbols, nil
}
