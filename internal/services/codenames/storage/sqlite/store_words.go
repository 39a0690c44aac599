package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

// SeedCorpus inserts values into the word corpus when it is empty. It returns
// the number of words inserted.
func (s *Store) SeedCorpus(ctx context.Context, values []string) (int, error) {
	count, err := s.CountCorpus(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	return s.insertCorpus(ctx, values, false)
}

// ReplaceCorpus swaps the word corpus for values. Boards already dealt keep
// their own copies of the words.
func (s *Store) ReplaceCorpus(ctx context.Context, values []string) (int, error) {
	return s.insertCorpus(ctx, values, true)
}

func (s *Store) insertCorpus(ctx context.Context, values []string, replace bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM words"); err != nil {
			return 0, fmt.Errorf("clear corpus: %w", err)
		}
	}
	inserted := 0
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO words (value) VALUES (?)", value)
		if err != nil {
			return 0, fmt.Errorf("insert word %q: %w", value, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert word %q: %w", value, err)
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListCorpus returns the corpus ordered by id.
func (s *Store) ListCorpus(ctx context.Context) ([]storage.CorpusWord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id, value FROM words ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	defer rows.Close()

	var words []storage.CorpusWord
	for rows.Next() {
		var w storage.CorpusWord
		if err := rows.Scan(&w.ID, &w.Value); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus: %w", err)
	}
	return words, nil
}

// CountCorpus returns the number of corpus words.
func (s *Store) CountCorpus(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM words").Scan(&count); err != nil {
		return 0, fmt.Errorf("count corpus: %w", err)
	}
	return count, nil
}
