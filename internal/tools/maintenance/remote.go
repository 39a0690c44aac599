package maintenance

import (
	"context"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"

	platformgrpc "github.com/mikeczech/codenames/internal/platform/grpc"
	grpcapi "github.com/mikeczech/codenames/internal/services/codenames/api/grpc"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
)

const (
	remoteDialTimeout = 10 * time.Second
	remotePageSize    = 500
)

// RemoteClient is the game service surface remote maintenance reads from.
type RemoteClient interface {
	GetState(ctx context.Context, req *grpcapi.GetStateRequest, opts ...grpc.CallOption) (*grpcapi.GetStateResponse, error)
	ListEvents(ctx context.Context, req *grpcapi.ListEventsRequest, opts ...grpc.CallOption) (*grpcapi.ListEventsResponse, error)
	ListWords(ctx context.Context, req *grpcapi.ListRequest, opts ...grpc.CallOption) (*grpcapi.ListWordsResponse, error)
	ListPlayers(ctx context.Context, req *grpcapi.ListRequest, opts ...grpc.CallOption) (*grpcapi.ListPlayersResponse, error)
}

func runRemote(ctx context.Context, cfg Config, ids []string, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logf := func(format string, args ...any) {
		fmt.Fprintf(errOut, format+"\n", args...)
	}
	conn, err := platformgrpc.DialWithHealth(ctx, cfg.GRPCAddr, grpcapi.ServiceName, remoteDialTimeout, logf)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.GRPCAddr, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close connection: %v\n", err)
		}
	}()
	return runWithClient(ctx, cfg, grpcapi.NewClient(conn), ids, out)
}

func runWithClient(ctx context.Context, cfg Config, client RemoteClient, ids []string, out io.Writer) error {
	failed := 0
	for _, gameID := range ids {
		report := remoteReport(ctx, client, gameID, cfg.UntilSeq)
		if report.Error == "" && cfg.Integrity {
			report.Mismatches = compareRemote(ctx, client, report)
		}
		if report.Error != "" || len(report.Mismatches) > 0 {
			failed++
		}
		if err := writeReport(out, report, cfg.JSONOutput); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d games failed", failed, len(ids))
	}
	return nil
}

func remoteReport(ctx context.Context, client RemoteClient, gameID string, untilSeq uint64) Report {
	report := Report{GameID: gameID}
	state, err := client.GetState(ctx, &grpcapi.GetStateRequest{GameID: gameID, AtSeq: untilSeq})
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.LastSeq = state.LastSeq
	report.Condition = state.Condition
	report.Remaining = activeByColor(state.Words)
	for _, h := range state.Hints {
		if h.Word != "" {
			report.Hints++
		}
	}
	report.Players = len(state.Players)
	report.Guesses = len(state.Guesses)
	return report
}

// compareRemote checks that the served journal is contiguous up to the
// snapshot and that the served read models agree with it.
func compareRemote(ctx context.Context, client RemoteClient, report Report) []string {
	var mismatches []string
	next := uint64(1)
	var after uint64
journal:
	for {
		page, err := client.ListEvents(ctx, &grpcapi.ListEventsRequest{GameID: report.GameID, AfterSeq: after, PageSize: remotePageSize})
		if err != nil {
			return append(mismatches, fmt.Sprintf("events: %v", err))
		}
		for _, evt := range page.Events {
			if evt.Seq != next {
				mismatches = append(mismatches, fmt.Sprintf("journal gap: want seq %d, got %d", next, evt.Seq))
				break journal
			}
			next++
		}
		if page.NextAfterSeq == 0 {
			break
		}
		after = page.NextAfterSeq
	}
	if len(mismatches) == 0 && next-1 != report.LastSeq {
		mismatches = append(mismatches, fmt.Sprintf("journal: %d events, snapshot seq %d", next-1, report.LastSeq))
	}

	words, err := client.ListWords(ctx, &grpcapi.ListRequest{GameID: report.GameID})
	if err != nil {
		return append(mismatches, fmt.Sprintf("words: %v", err))
	}
	remaining := activeByColor(words.Words)
	for _, color := range []game.Color{game.ColorBlue, game.ColorRed, game.ColorNeutral, game.ColorAssassin} {
		if remaining[string(color)] != report.Remaining[string(color)] {
			mismatches = append(mismatches, fmt.Sprintf("%s words remaining: projection %d, snapshot %d",
				color, remaining[string(color)], report.Remaining[string(color)]))
		}
	}

	players, err := client.ListPlayers(ctx, &grpcapi.ListRequest{GameID: report.GameID})
	if err != nil {
		return append(mismatches, fmt.Sprintf("players: %v", err))
	}
	if len(players.Players) != report.Players {
		mismatches = append(mismatches, fmt.Sprintf("players: projection %d, snapshot %d", len(players.Players), report.Players))
	}
	return mismatches
}

func activeByColor(words []grpcapi.Word) map[string]int {
	remaining := make(map[string]int)
	for _, w := range words {
		if w.SelectedAt == nil {
			remaining[w.Color]++
		}
	}
	return remaining
}
