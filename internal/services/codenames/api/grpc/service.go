package grpcapi

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/platform/grpc/pagination"
	"github.com/mikeczech/codenames/internal/platform/requestctx"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/manager"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "codenames.v1.GameService"

var eventPageSize = pagination.PageSizeConfig{Default: 50, Max: 500}

// Service is the game surface the gRPC API exposes.
type Service interface {
	CreateGame(ctx context.Context, name, sessionID string) (manager.Game, error)
	JoinGame(ctx context.Context, gameID, sessionID, color, role string) (game.State, error)
	LeaveGame(ctx context.Context, gameID, sessionID string) (game.State, error)
	StartGame(ctx context.Context, gameID, sessionID string) (game.State, error)
	GiveHint(ctx context.Context, gameID, sessionID, word string, num int) (game.State, error)
	Guess(ctx context.Context, gameID, sessionID string, wordID int64) (game.State, error)
	EndTurn(ctx context.Context, gameID, sessionID string) (game.State, error)
	ListWords(ctx context.Context, gameID string) ([]storage.WordRecord, error)
	ListHints(ctx context.Context, gameID string) ([]storage.HintRecord, error)
	ListPlayers(ctx context.Context, gameID string) ([]storage.PlayerRecord, error)
	ListConditions(ctx context.Context, gameID string) ([]storage.ConditionRecord, error)
	Load(ctx context.Context, gameID string) (game.State, error)
	LoadAt(ctx context.Context, gameID string, untilSeq uint64) (game.State, error)
	ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// Register adds the game service to s.
func Register(s grpc.ServiceRegistrar, svc Service) {
	s.RegisterService(&serviceDesc, &handlers{svc: svc})
}

type handlers struct {
	svc Service
}

// handlerIface exists for the HandlerType check of RegisterService.
type handlerIface interface {
	service() Service
}

func (h *handlers) service() Service { return h.svc }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*handlerIface)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateGame", func(ctx context.Context, svc Service, req *CreateGameRequest) (*CreateGameResponse, error) {
			created, err := svc.CreateGame(ctx, strings.TrimSpace(req.Name), sessionID(ctx, req.SessionID))
			if err != nil {
				return nil, err
			}
			return &CreateGameResponse{GameID: created.ID, Name: created.Name}, nil
		}),
		unary("JoinGame", func(ctx context.Context, svc Service, req *JoinGameRequest) (*ActionResponse, error) {
			return actionResponse(svc.JoinGame(ctx, req.GameID, sessionID(ctx, req.SessionID), req.Color, req.Role))
		}),
		unary("LeaveGame", func(ctx context.Context, svc Service, req *GameRequest) (*ActionResponse, error) {
			return actionResponse(svc.LeaveGame(ctx, req.GameID, sessionID(ctx, req.SessionID)))
		}),
		unary("StartGame", func(ctx context.Context, svc Service, req *GameRequest) (*ActionResponse, error) {
			return actionResponse(svc.StartGame(ctx, req.GameID, sessionID(ctx, req.SessionID)))
		}),
		unary("GiveHint", func(ctx context.Context, svc Service, req *GiveHintRequest) (*ActionResponse, error) {
			return actionResponse(svc.GiveHint(ctx, req.GameID, sessionID(ctx, req.SessionID), req.Word, req.Num))
		}),
		unary("Guess", func(ctx context.Context, svc Service, req *GuessRequest) (*ActionResponse, error) {
			return actionResponse(svc.Guess(ctx, req.GameID, sessionID(ctx, req.SessionID), req.WordID))
		}),
		unary("EndTurn", func(ctx context.Context, svc Service, req *GameRequest) (*ActionResponse, error) {
			return actionResponse(svc.EndTurn(ctx, req.GameID, sessionID(ctx, req.SessionID)))
		}),
		unary("ListWords", func(ctx context.Context, svc Service, req *ListRequest) (*ListWordsResponse, error) {
			records, err := svc.ListWords(ctx, req.GameID)
			if err != nil {
				return nil, err
			}
			return &ListWordsResponse{Words: wordsFromRecords(records)}, nil
		}),
		unary("ListHints", func(ctx context.Context, svc Service, req *ListRequest) (*ListHintsResponse, error) {
			records, err := svc.ListHints(ctx, req.GameID)
			if err != nil {
				return nil, err
			}
			return &ListHintsResponse{Hints: hintsFromRecords(records)}, nil
		}),
		unary("ListPlayers", func(ctx context.Context, svc Service, req *ListRequest) (*ListPlayersResponse, error) {
			records, err := svc.ListPlayers(ctx, req.GameID)
			if err != nil {
				return nil, err
			}
			return &ListPlayersResponse{Players: playersFromRecords(records)}, nil
		}),
		unary("ListConditions", func(ctx context.Context, svc Service, req *ListRequest) (*ListConditionsResponse, error) {
			records, err := svc.ListConditions(ctx, req.GameID)
			if err != nil {
				return nil, err
			}
			return &ListConditionsResponse{Conditions: conditionsFromRecords(records)}, nil
		}),
		unary("GetState", func(ctx context.Context, svc Service, req *GetStateRequest) (*GetStateResponse, error) {
			var (
				state game.State
				err   error
			)
			if req.AtSeq > 0 {
				state, err = svc.LoadAt(ctx, req.GameID, req.AtSeq)
			} else {
				state, err = svc.Load(ctx, req.GameID)
			}
			if err != nil {
				return nil, err
			}
			return stateResponse(state), nil
		}),
		unary("ListEvents", func(ctx context.Context, svc Service, req *ListEventsRequest) (*ListEventsResponse, error) {
			limit := pagination.ClampPageSize(req.PageSize, eventPageSize)
			events, err := svc.ListEvents(ctx, req.GameID, req.AfterSeq, limit)
			if err != nil {
				return nil, err
			}
			resp := &ListEventsResponse{Events: eventsFromJournal(events)}
			if len(events) == limit {
				resp.NextAfterSeq = events[len(events)-1].Seq
			}
			return resp, nil
		}),
	},
	Metadata: "codenames/v1/game.proto",
}

// unary builds a method descriptor that decodes Req, calls fn and converts
// its error to a gRPC status.
func unary[Req, Resp any](name string, fn func(context.Context, Service, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decode %s request: %v", name, err)
			}
			svc := srv.(handlerIface).service()
			call := func(ctx context.Context, req any) (any, error) {
				resp, err := fn(ctx, svc, req.(*Req))
				if err != nil {
					if _, ok := apperrors.As(err); !ok {
						zerolog.Ctx(ctx).Error().Err(err).Str("method", fullMethod).Msg("call failed")
					}
					return nil, toStatus(err)
				}
				return resp, nil
			}
			if interceptor == nil {
				return call(ctx, req)
			}
			return interceptor(ctx, req, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, call)
		},
	}
}

func actionResponse(state game.State, err error) (*ActionResponse, error) {
	if err != nil {
		return nil, err
	}
	return &ActionResponse{Condition: string(state.Condition()), LastSeq: state.LastSeq}, nil
}

// sessionID prefers the session carried in the message over the metadata one.
func sessionID(ctx context.Context, fromRequest string) string {
	if v := strings.TrimSpace(fromRequest); v != "" {
		return v
	}
	return requestctx.SessionIDFromContext(ctx)
}

// toStatus maps domain errors to their gRPC status. Other errors become
// Internal without exposing their text.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok && status.Code(err) != codes.Unknown {
		return err
	}
	if domainErr, ok := apperrors.As(err); ok {
		return domainErr.ToGRPCStatus()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "internal error")
}
