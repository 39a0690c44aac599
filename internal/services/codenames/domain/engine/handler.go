package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/replay"
)

const (
	defaultMaxAttempts = 3
	tracerName         = "github.com/mikeczech/codenames/internal/services/codenames/domain/engine"
)

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrDeciderRequired indicates a missing decider.
	ErrDeciderRequired = errors.New("decider is required")
	// ErrStateLoaderRequired indicates a missing state loader.
	ErrStateLoaderRequired = errors.New("state loader is required")
	// ErrJournalRequired indicates a missing event journal.
	ErrJournalRequired = errors.New("event journal is required")
)

// StateLoader loads folded state and the sequence it reflects.
type StateLoader[S any] interface {
	Load(ctx context.Context, gameID string) (S, uint64, error)
}

// EventJournal appends the events of one decision atomically. Appending
// fails with a sequence conflict when the journal has moved past expectedSeq.
type EventJournal interface {
	AppendEvents(ctx context.Context, gameID string, expectedSeq uint64, events []event.Event) ([]event.Event, error)
}

// Decider returns a decision for a command.
type Decider[S any] interface {
	Decide(state S, cmd command.Command, now func() time.Time) command.Decision
}

// Handler validates, decides, appends, and folds commands.
type Handler[S any] struct {
	Commands    *command.Registry
	Events      *event.Registry
	Journal     EventJournal
	Snapshots   StateSnapshotStore[S]
	StateLoader StateLoader[S]
	Decider     Decider[S]
	Folder      replay.Folder[S]
	Locks       *GameLocks
	Now         func() time.Time
	// MaxAttempts bounds retries after sequence conflicts; zero means 3.
	MaxAttempts int
}

// Result captures execution outcomes.
type Result[S any] struct {
	Decision command.Decision
	State    S
	LastSeq  uint64
}

// Execute runs cmd to completion. Rejected decisions return the loaded state
// together with the rejection as a domain error.
func (h Handler[S]) Execute(ctx context.Context, cmd command.Command) (Result[S], error) {
	if h.Commands == nil {
		return Result[S]{}, ErrCommandRegistryRequired
	}
	if h.Decider == nil {
		return Result[S]{}, ErrDeciderRequired
	}
	if h.StateLoader == nil {
		return Result[S]{}, ErrStateLoaderRequired
	}
	if h.Journal == nil {
		return Result[S]{}, ErrJournalRequired
	}
	validated, err := h.Commands.ValidateForDecision(cmd)
	if err != nil {
		return Result[S]{}, apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
	}
	cmd = validated

	ctx, span := otel.Tracer(tracerName).Start(ctx, "codenames.command",
		trace.WithAttributes(
			attribute.String("codenames.game_id", cmd.GameID),
			attribute.String("codenames.command", string(cmd.Type)),
		))
	defer span.End()

	if h.Locks != nil {
		unlock := h.Locks.Lock(cmd.GameID)
		defer unlock()
	}

	attempts := h.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	log := zerolog.Ctx(ctx).With().
		Str("game_id", cmd.GameID).
		Str("command", string(cmd.Type)).
		Logger()

	var result Result[S]
	for attempt := 1; ; attempt++ {
		result, err = h.executeOnce(ctx, cmd)
		if err == nil || apperrors.CodeOf(err) != apperrors.CodeSequenceConflict || attempt >= attempts {
			break
		}
		log.Debug().Int("attempt", attempt).Msg("sequence conflict, retrying command")
	}
	switch {
	case err == nil:
		span.SetAttributes(attribute.Int("codenames.events", len(result.Decision.Events)))
		log.Debug().Int("events", len(result.Decision.Events)).Uint64("seq", result.LastSeq).Msg("command applied")
	case result.Decision.Rejected():
		span.SetAttributes(attribute.String("codenames.rejection", result.Decision.Rejections[0].Code))
		log.Info().Str("code", result.Decision.Rejections[0].Code).Msg(result.Decision.Rejections[0].Message)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Msg("command failed")
	}
	return result, err
}

func (h Handler[S]) executeOnce(ctx context.Context, cmd command.Command) (Result[S], error) {
	state, lastSeq, err := h.StateLoader.Load(ctx, cmd.GameID)
	if err != nil {
		return Result[S]{}, fmt.Errorf("load game %s: %w", cmd.GameID, err)
	}
	now := h.Now
	if now == nil {
		now = time.Now
	}
	decision := h.Decider.Decide(state, cmd, now)
	result := Result[S]{Decision: decision, State: state, LastSeq: lastSeq}
	if decision.Rejected() {
		return result, RejectionError(decision)
	}
	if len(decision.Events) == 0 {
		return result, nil
	}

	if h.Events != nil {
		vetted := make([]event.Event, 0, len(decision.Events))
		for _, evt := range decision.Events {
			checked, err := h.Events.ValidateForAppend(evt)
			if err != nil {
				return Result[S]{}, apperrors.Wrap(apperrors.CodeInternal, fmt.Sprintf("invalid %s event", evt.Type), err)
			}
			vetted = append(vetted, checked)
		}
		decision.Events = vetted
	}

	stored, err := h.Journal.AppendEvents(ctx, cmd.GameID, lastSeq, decision.Events)
	if err != nil {
		return Result[S]{}, err
	}
	decision.Events = stored
	result.Decision = decision

	if h.Folder != nil {
		for _, evt := range stored {
			state, err = h.Folder.Fold(state, evt)
			if err != nil {
				return Result[S]{}, wrapNonRetryable(fmt.Errorf("fold persisted event %d: %w", evt.Seq, err))
			}
		}
	}
	result.State = state
	result.LastSeq = stored[len(stored)-1].Seq

	if h.Snapshots != nil && h.Folder != nil {
		if err := h.Snapshots.SaveState(ctx, cmd.GameID, result.LastSeq, state); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("game_id", cmd.GameID).Msg("save snapshot")
		}
	}
	return result, nil
}
