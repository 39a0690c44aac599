// Package grpcapi exposes the game service over gRPC.
//
// Messages are plain Go structs carried with a JSON codec registered under the
// "json" content subtype, so clients call with grpc.CallContentSubtype("json").
// The standard health service is registered alongside and keeps the default
// protobuf codec.
package grpcapi
