package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls the game service over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient returns a client using conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any, opts ...grpc.CallOption) (*Resp, error) {
	resp := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreateGame(ctx context.Context, req *CreateGameRequest, opts ...grpc.CallOption) (*CreateGameResponse, error) {
	return invoke[CreateGameResponse](ctx, c, "CreateGame", req, opts...)
}

func (c *Client) JoinGame(ctx context.Context, req *JoinGameRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "JoinGame", req, opts...)
}

func (c *Client) LeaveGame(ctx context.Context, req *GameRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "LeaveGame", req, opts...)
}

func (c *Client) StartGame(ctx context.Context, req *GameRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "StartGame", req, opts...)
}

func (c *Client) GiveHint(ctx context.Context, req *GiveHintRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "GiveHint", req, opts...)
}

func (c *Client) Guess(ctx context.Context, req *GuessRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "Guess", req, opts...)
}

func (c *Client) EndTurn(ctx context.Context, req *GameRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c, "EndTurn", req, opts...)
}

func (c *Client) ListWords(ctx context.Context, req *ListRequest, opts ...grpc.CallOption) (*ListWordsResponse, error) {
	return invoke[ListWordsResponse](ctx, c, "ListWords", req, opts...)
}

func (c *Client) ListHints(ctx context.Context, req *ListRequest, opts ...grpc.CallOption) (*ListHintsResponse, error) {
	return invoke[ListHintsResponse](ctx, c, "ListHints", req, opts...)
}

func (c *Client) ListPlayers(ctx context.Context, req *ListRequest, opts ...grpc.CallOption) (*ListPlayersResponse, error) {
	return invoke[ListPlayersResponse](ctx, c, "ListPlayers", req, opts...)
}

func (c *Client) ListConditions(ctx context.Context, req *ListRequest, opts ...grpc.CallOption) (*ListConditionsResponse, error) {
	return invoke[ListConditionsResponse](ctx, c, "ListConditions", req, opts...)
}

func (c *Client) GetState(ctx context.Context, req *GetStateRequest, opts ...grpc.CallOption) (*GetStateResponse, error) {
	return invoke[GetStateResponse](ctx, c, "GetState", req, opts...)
}

func (c *Client) ListEvents(ctx context.Context, req *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsResponse, error) {
	return invoke[ListEventsResponse](ctx, c, "ListEvents", req, opts...)
}
