package grpcapi

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/mikeczech/codenames/internal/platform/id"
	"github.com/mikeczech/codenames/internal/platform/requestctx"
)

const (
	// RequestIDHeader is the metadata key for request correlation ids.
	RequestIDHeader = "x-codenames-request-id"
	// SessionIDHeader is the metadata key read when a request message carries
	// no session id.
	SessionIDHeader = "x-codenames-session-id"
)

// RequestMetadataInterceptor makes sure every call has a request id, taken
// from the incoming metadata or generated, and echoes it in the response
// header. A session id in the metadata is stored on the context as well.
func RequestMetadataInterceptor(idGenerator func() (string, error)) grpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		requestID := firstMetadataValue(md, RequestIDHeader)
		if requestID == "" {
			generated, err := idGenerator()
			if err != nil {
				return nil, status.Errorf(codes.Internal, "generate request id: %v", err)
			}
			requestID = generated
		}
		ctx = requestctx.WithRequestID(ctx, requestID)
		if sessionID := firstMetadataValue(md, SessionIDHeader); sessionID != "" {
			ctx = requestctx.WithSessionID(ctx, sessionID)
		}
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}
		return handler(ctx, req)
	}
}

// LoggingInterceptor attaches logger to the call context and logs each call
// once it completes.
func LoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		log := logger.With().
			Str("method", info.FullMethod).
			Str("request_id", requestctx.RequestIDFromContext(ctx)).
			Logger()
		ctx = log.WithContext(ctx)

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		entry := log.Info()
		if code == codes.Internal || code == codes.Unknown {
			entry = log.Warn()
		}
		entry.Str("code", code.String()).Dur("duration", time.Since(start)).Msg("grpc call")
		return resp, err
	}
}

// firstMetadataValue returns the first printable ASCII value stored under key.
func firstMetadataValue(md metadata.MD, key string) string {
	for _, value := range md.Get(key) {
		value = strings.TrimSpace(value)
		if isPrintableASCII(value) {
			return value
		}
	}
	return ""
}

func isPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}
