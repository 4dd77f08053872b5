package rpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/veterinaryhq/userd/pkg/store"
)

// statusFromError converts a store error into a gRPC status error.
//
// Every error leaving a handler goes through this function; an error that
// reaches the client without a canonical code is a bug in the store layer,
// not something to paper over here. Unclassified errors map to Internal
// with a generic message so backend details never reach the client.
func statusFromError(err error) error {
	if err == nil {
		return nil
	}

	switch store.CodeOf(err) {
	case store.ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case store.ErrAlreadyExists:
		return status.Error(codes.AlreadyExists, err.Error())
	case store.ErrInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case store.ErrUnavailable:
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
