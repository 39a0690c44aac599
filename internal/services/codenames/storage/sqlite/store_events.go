package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const eventColumns = `game_id, seq, event_hash, prev_event_hash, chain_hash, signature_key_id, event_signature,
timestamp, event_type, request_id, actor_type, actor_id, entity_type, entity_id, payload_json`

// AppendEvents atomically appends the events of one decision after
// expectedSeq together with their projection rows.
//
// Sequence numbers are allocated contiguously and chain hashes link each event
// to its predecessor, including the last stored event for the first item.
func (s *Store) AppendEvents(ctx context.Context, gameID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if s.eventRegistry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	validated := make([]event.Event, len(events))
	for i, evt := range events {
		v, err := s.eventRegistry.ValidateForAppend(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if v.GameID != gameID {
			return nil, fmt.Errorf("event %d: game id %q does not match %q", i, v.GameID, gameID)
		}
		v.Timestamp = v.Timestamp.UTC().Truncate(time.Millisecond)
		validated[i] = v
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		lastSeq   int64
		prevChain string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT seq, chain_hash FROM events WHERE game_id = ? ORDER BY seq DESC LIMIT 1", gameID,
	).Scan(&lastSeq, &prevChain)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event seq: %w", err)
	}
	if uint64(lastSeq) != expectedSeq {
		return nil, fmt.Errorf("%w: game %s is at seq %d, expected %d", storage.ErrSequenceConflict, gameID, lastSeq, expectedSeq)
	}

	stored := make([]event.Event, 0, len(validated))
	for i, evt := range validated {
		evt.Seq = expectedSeq + uint64(i) + 1
		if err := s.sealEvent(&evt, prevChain); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			evt.GameID, int64(evt.Seq), evt.Hash, evt.PrevHash, evt.ChainHash, evt.SignatureKeyID, evt.Signature,
			toMillis(evt.Timestamp), string(evt.Type), evt.RequestID, string(evt.ActorType), evt.ActorID,
			evt.EntityType, evt.EntityID, evt.PayloadJSON,
		); err != nil {
			return nil, constraintError(fmt.Sprintf("append event %d", evt.Seq), err)
		}
		if err := applyProjection(ctx, tx, evt); err != nil {
			return nil, constraintError(fmt.Sprintf("project %s", evt.Type), err)
		}
		prevChain = evt.ChainHash
		stored = append(stored, evt)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// sealEvent assigns the content hash, chain hash and signature of evt.
func (s *Store) sealEvent(evt *event.Event, prevChain string) error {
	hash, err := event.EventHash(*evt)
	if err != nil {
		return fmt.Errorf("compute event hash: %w", err)
	}
	evt.Hash = hash
	evt.PrevHash = prevChain
	chainHash, err := event.ChainHash(*evt, prevChain)
	if err != nil {
		return fmt.Errorf("compute chain hash: %w", err)
	}
	evt.ChainHash = chainHash
	if s.keyring != nil {
		signature, keyID, err := s.keyring.SignChainHash(evt.GameID, chainHash)
		if err != nil {
			return fmt.Errorf("sign chain hash: %w", err)
		}
		evt.Signature = signature
		evt.SignatureKeyID = keyID
	}
	return nil
}

// ListEvents returns up to limit events with seq > afterSeq in order. A
// non-positive limit returns every remaining event.
func (s *Store) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE game_id = ? AND seq > ? ORDER BY seq LIMIT ?",
		gameID, int64(afterSeq), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// LatestSeq returns the last stored sequence of gameID, 0 when it has none.
func (s *Store) LatestSeq(ctx context.Context, gameID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM events WHERE game_id = ?", gameID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest event seq: %w", err)
	}
	return uint64(seq), nil
}

// VerifyEventIntegrity recomputes the hash chain of every game journal.
// Signatures are verified for signed events when a keyring is configured.
func (s *Store) VerifyEventIntegrity(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gameIDs, err := s.listEventGameIDs(ctx)
	if err != nil {
		return err
	}
	for _, gameID := range gameIDs {
		if err := s.verifyGameEvents(ctx, gameID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) listEventGameIDs(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT DISTINCT game_id FROM events ORDER BY game_id")
	if err != nil {
		return nil, fmt.Errorf("list game ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game ids: %w", err)
	}
	return ids, nil
}

func (s *Store) verifyGameEvents(ctx context.Context, gameID string) error {
	var lastSeq uint64
	prevChainHash := ""
	for {
		events, err := s.ListEvents(ctx, gameID, lastSeq, 200)
		if err != nil {
			return fmt.Errorf("list events game_id=%s: %w", gameID, err)
		}
		if len(events) == 0 {
			return nil
		}
		for _, evt := range events {
			if evt.Seq != lastSeq+1 {
				return fmt.Errorf("event sequence gap game_id=%s expected=%d got=%d", gameID, lastSeq+1, evt.Seq)
			}
			if evt.PrevHash != prevChainHash {
				return fmt.Errorf("prev hash mismatch game_id=%s seq=%d", gameID, evt.Seq)
			}
			hash, err := event.EventHash(evt)
			if err != nil {
				return fmt.Errorf("compute event hash game_id=%s seq=%d: %w", gameID, evt.Seq, err)
			}
			if hash != evt.Hash {
				return fmt.Errorf("event hash mismatch game_id=%s seq=%d", gameID, evt.Seq)
			}
			chainHash, err := event.ChainHash(evt, prevChainHash)
			if err != nil {
				return fmt.Errorf("compute chain hash game_id=%s seq=%d: %w", gameID, evt.Seq, err)
			}
			if chainHash != evt.ChainHash {
				return fmt.Errorf("chain hash mismatch game_id=%s seq=%d", gameID, evt.Seq)
			}
			if s.keyring != nil && evt.SignatureKeyID != "" {
				if err := s.keyring.VerifyChainHash(gameID, chainHash, evt.Signature, evt.SignatureKeyID); err != nil {
					return fmt.Errorf("signature mismatch game_id=%s seq=%d: %w", gameID, evt.Seq, err)
				}
			}
			prevChainHash = evt.ChainHash
			lastSeq = evt.Seq
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		evt       event.Event
		seq       int64
		timestamp int64
		eventType string
		actorType string
	)
	if err := row.Scan(
		&evt.GameID, &seq, &evt.Hash, &evt.PrevHash, &evt.ChainHash, &evt.SignatureKeyID, &evt.Signature,
		&timestamp, &eventType, &evt.RequestID, &actorType, &evt.ActorID, &evt.EntityType, &evt.EntityID,
		&evt.PayloadJSON,
	); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	evt.Seq = uint64(seq)
	evt.Timestamp = fromMillis(timestamp)
	evt.Type = event.Type(eventType)
	evt.ActorType = event.ActorType(actorType)
	return evt, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT ||
		code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

// constraintError maps uniqueness violations of the projection tables to the
// rule errors they enforce.
func constraintError(op string, err error) error {
	if err == nil {
		return nil
	}
	if !isConstraintError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	message := err.Error()
	switch {
	case strings.Contains(message, "events.game_id, events.seq"):
		return fmt.Errorf("%s: %w", op, storage.ErrSequenceConflict)
	case strings.Contains(message, "games.name"), strings.Contains(message, "games.id"):
		return apperrors.Wrap(apperrors.CodeGameAlreadyExists, "game already exists", err)
	case strings.Contains(message, "players.game_id, players.session_id"):
		return apperrors.Wrap(apperrors.CodeGameAlreadyJoined, "session already joined the game", err)
	case strings.Contains(message, "players.game_id, players.color, players.role"):
		return apperrors.Wrap(apperrors.CodeGameRoleOccupied, "color and role already occupied", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
