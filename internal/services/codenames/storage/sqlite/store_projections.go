package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

// applyProjection writes the projection rows of one event inside the append
// transaction. Unknown event types have no projection.
func applyProjection(ctx context.Context, tx *sql.Tx, evt event.Event) error {
	at := toMillis(evt.Timestamp)
	switch evt.Type {
	case game.EventTypeGameCreated:
		var payload game.GameCreatedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO games (id, name, creator_session_id, condition, created_at, updated_at) VALUES (?, ?, ?, '', ?, ?)",
			evt.GameID, payload.Name, payload.CreatorSessionID, at, at,
		)
		return err
	case game.EventTypeBoardAssigned:
		var payload game.BoardAssignedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		for _, w := range payload.Words {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO active_words (game_id, word_id, value, color, position) VALUES (?, ?, ?, ?, ?)",
				evt.GameID, w.ID, w.Value, string(w.Color), w.Position,
			); err != nil {
				return err
			}
		}
		return nil
	case game.EventTypeConditionPushed:
		var payload game.ConditionPushedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		hintID := sql.NullInt64{Int64: payload.HintID, Valid: payload.HintID > 0}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO conditions (game_id, seq, condition, hint_id, created_at) VALUES (?, ?, ?, ?, ?)",
			evt.GameID, int64(evt.Seq), string(payload.Condition), hintID, at,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE games SET condition = ?, updated_at = ? WHERE id = ?",
			string(payload.Condition), at, evt.GameID,
		)
		return err
	case game.EventTypeHintGiven:
		var payload game.HintGivenPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO hints (game_id, hint_id, word, num, color, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			evt.GameID, payload.HintID, payload.Word, payload.Num, string(payload.Color), at,
		)
		return err
	case game.EventTypePlayerJoined:
		var payload game.PlayerJoinedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO players (game_id, session_id, color, role, joined_at) VALUES (?, ?, ?, ?, ?)",
			evt.GameID, payload.SessionID, string(payload.Color), string(payload.Role), at,
		)
		return err
	case game.EventTypePlayerLeft:
		var payload game.PlayerLeftPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM players WHERE game_id = ? AND session_id = ?",
			evt.GameID, payload.SessionID,
		)
		return err
	case game.EventTypeGuessMade:
		var payload game.GuessMadePayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE active_words SET selected_at = ? WHERE game_id = ? AND word_id = ? AND selected_at IS NULL",
			at, evt.GameID, payload.WordID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return fmt.Errorf("word %d is not an active word of game %s", payload.WordID, evt.GameID)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO guesses (game_id, seq, word_id, hint_id, created_at) VALUES (?, ?, ?, ?, ?)",
			evt.GameID, int64(evt.Seq), payload.WordID, payload.HintID, at,
		)
		return err
	}
	return nil
}

// GetGame returns the projection row of a game.
func (s *Store) GetGame(ctx context.Context, gameID string) (storage.GameRecord, error) {
	return s.getGame(ctx, "id", gameID)
}

// GetGameByName returns the projection row of the game called name.
func (s *Store) GetGameByName(ctx context.Context, name string) (storage.GameRecord, error) {
	return s.getGame(ctx, "name", strings.TrimSpace(name))
}

func (s *Store) getGame(ctx context.Context, column, value string) (storage.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.GameRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.GameRecord{}, fmt.Errorf("storage is not configured")
	}
	var (
		rec       storage.GameRecord
		condition string
		createdAt int64
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, name, creator_session_id, condition, created_at, updated_at FROM games WHERE "+column+" = ?",
		value,
	).Scan(&rec.ID, &rec.Name, &rec.CreatorSessionID, &condition, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	rec.Condition = game.Condition(condition)
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// ListWords returns every board word of a game in board order.
func (s *Store) ListWords(ctx context.Context, gameID string) ([]storage.WordRecord, error) {
	return s.listWords(ctx, gameID, false)
}

// ListActiveWords returns the words not guessed yet, in board order.
func (s *Store) ListActiveWords(ctx context.Context, gameID string) ([]storage.WordRecord, error) {
	return s.listWords(ctx, gameID, true)
}

func (s *Store) listWords(ctx context.Context, gameID string, activeOnly bool) ([]storage.WordRecord, error) {
	query := "SELECT word_id, value, color, position, selected_at FROM active_words WHERE game_id = ?"
	if activeOnly {
		query += " AND selected_at IS NULL"
	}
	query += " ORDER BY position, word_id"
	return queryGameRows(ctx, s, gameID, query, func(rows *sql.Rows) (storage.WordRecord, error) {
		var (
			rec        storage.WordRecord
			color      string
			selectedAt sql.NullInt64
		)
		if err := rows.Scan(&rec.WordID, &rec.Value, &color, &rec.Position, &selectedAt); err != nil {
			return rec, err
		}
		rec.GameID = gameID
		rec.Color = game.Color(color)
		rec.SelectedAt = fromNullMillis(selectedAt)
		return rec, nil
	})
}

// ListHints returns the hints of a game in order, including the placeholder.
func (s *Store) ListHints(ctx context.Context, gameID string) ([]storage.HintRecord, error) {
	return queryGameRows(ctx, s, gameID,
		"SELECT hint_id, word, num, color, created_at FROM hints WHERE game_id = ? ORDER BY hint_id",
		func(rows *sql.Rows) (storage.HintRecord, error) {
			var (
				rec       storage.HintRecord
				color     string
				createdAt int64
			)
			if err := rows.Scan(&rec.HintID, &rec.Word, &rec.Num, &color, &createdAt); err != nil {
				return rec, err
			}
			rec.GameID = gameID
			rec.Color = game.Color(color)
			rec.CreatedAt = fromMillis(createdAt)
			return rec, nil
		})
}

// ListPlayers returns the seated sessions of a game in join order.
func (s *Store) ListPlayers(ctx context.Context, gameID string) ([]storage.PlayerRecord, error) {
	return queryGameRows(ctx, s, gameID,
		"SELECT session_id, color, role, joined_at FROM players WHERE game_id = ? ORDER BY joined_at, rowid",
		func(rows *sql.Rows) (storage.PlayerRecord, error) {
			var (
				rec         storage.PlayerRecord
				color, role string
				joinedAt    int64
			)
			if err := rows.Scan(&rec.SessionID, &color, &role, &joinedAt); err != nil {
				return rec, err
			}
			rec.GameID = gameID
			rec.Color = game.Color(color)
			rec.Role = game.Role(role)
			rec.JoinedAt = fromMillis(joinedAt)
			return rec, nil
		})
}

// ListConditions returns the condition log of a game in insertion order.
func (s *Store) ListConditions(ctx context.Context, gameID string) ([]storage.ConditionRecord, error) {
	return queryGameRows(ctx, s, gameID,
		"SELECT seq, condition, hint_id, created_at FROM conditions WHERE game_id = ? ORDER BY seq",
		func(rows *sql.Rows) (storage.ConditionRecord, error) {
			var (
				rec       storage.ConditionRecord
				seq       int64
				condition string
				hintID    sql.NullInt64
				createdAt int64
			)
			if err := rows.Scan(&seq, &condition, &hintID, &createdAt); err != nil {
				return rec, err
			}
			rec.GameID = gameID
			rec.Seq = uint64(seq)
			rec.Condition = game.Condition(condition)
			rec.HintID = hintID.Int64
			rec.CreatedAt = fromMillis(createdAt)
			return rec, nil
		})
}

// ListGuesses returns the guesses of a game in order.
func (s *Store) ListGuesses(ctx context.Context, gameID string) ([]storage.GuessRecord, error) {
	return queryGameRows(ctx, s, gameID,
		"SELECT seq, word_id, hint_id, created_at FROM guesses WHERE game_id = ? ORDER BY seq",
		func(rows *sql.Rows) (storage.GuessRecord, error) {
			var (
				rec       storage.GuessRecord
				seq       int64
				createdAt int64
			)
			if err := rows.Scan(&seq, &rec.WordID, &rec.HintID, &createdAt); err != nil {
				return rec, err
			}
			rec.GameID = gameID
			rec.Seq = uint64(seq)
			rec.CreatedAt = fromMillis(createdAt)
			return rec, nil
		})
}

// IsOccupied reports whether a session holds (color, role) in the game.
func (s *Store) IsOccupied(ctx context.Context, gameID string, color game.Color, role game.Role) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM players WHERE game_id = ? AND color = ? AND role = ?",
		gameID, string(color), string(role))
}

// HasJoined reports whether sessionID is seated in the game.
func (s *Store) HasJoined(ctx context.Context, gameID, sessionID string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM players WHERE game_id = ? AND session_id = ?", gameID, sessionID)
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	var found int
	err := s.sqlDB.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query players: %w", err)
	}
	return true, nil
}

// queryGameRows runs a game-scoped query and scans every row with scan. It
// fails with storage.ErrNotFound when the game does not exist.
func queryGameRows[T any](ctx context.Context, s *Store, gameID, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("query game %s: %w", gameID, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
