package rpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/store"
	"github.com/veterinaryhq/userd/pkg/userpb"
)

// UserService implements the user.v1.UserService gRPC service on top of a
// UserStore.
//
// The service is a thin translation layer: request validation, wire type
// conversion, and error mapping. All data access goes through the store,
// which owns connection scoping and error classification.
type UserService struct {
	userpb.UnimplementedUserServiceServer

	store store.UserStore
}

// NewUserService creates a UserService backed by the given store.
func NewUserService(st store.UserStore) *UserService {
	return &UserService{store: st}
}

// GetUserById returns the user with the given ID.
func (s *UserService) GetUserById(ctx context.Context, req *userpb.GetUserByIdRequest) (*userpb.UserResponse, error) {
	if req.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	user, err := s.store.GetUserByID(ctx, req.GetId())
	if err != nil {
		return nil, statusFromError(err)
	}

	return &userpb.UserResponse{User: userToProto(user)}, nil
}

// GetUserByEmail returns the user with the given email address.
//
// Matching is exact; the address is never logged in clear text.
func (s *UserService) GetUserByEmail(ctx context.Context, req *userpb.GetUserByEmailRequest) (*userpb.UserResponse, error) {
	if req.GetEmail() == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	user, err := s.store.GetUserByEmail(ctx, req.GetEmail())
	if err != nil {
		logger.DebugCtx(ctx, "user lookup by email failed",
			logger.EmailDigest(req.GetEmail()),
			logger.Err(err))
		return nil, statusFromError(err)
	}

	return &userpb.UserResponse{User: userToProto(user)}, nil
}

// CreateUser creates a new user record.
//
// When the request carries no ID the service assigns one. Email uniqueness
// is enforced by the database, so concurrent creates with the same address
// race safely: exactly one wins and the rest get AlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, req *userpb.CreateUserRequest) (*userpb.CreateUserResponse, error) {
	if req.GetEmail() == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}
	if req.GetPassword() == "" {
		return nil, status.Error(codes.InvalidArgument, "password is required")
	}

	id := req.GetId()
	if id == "" {
		id = uuid.NewString()
	}

	user := &store.User{
		ID:           id,
		Email:        req.GetEmail(),
		FirstName:    req.GetFirstName(),
		MiddleName:   wrapperToStringPtr(req.GetMiddleName()),
		LastName:     req.GetLastName(),
		PasswordHash: req.GetPassword(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, statusFromError(err)
	}

	return &userpb.CreateUserResponse{Success: true, Id: id}, nil
}

// GetProfile returns the profile for the given user ID.
func (s *UserService) GetProfile(ctx context.Context, req *userpb.GetProfileRequest) (*userpb.ProfileResponse, error) {
	if req.GetUserId() == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	profile, err := s.store.GetProfileByUserID(ctx, req.GetUserId())
	if err != nil {
		return nil, statusFromError(err)
	}

	return &userpb.ProfileResponse{Profile: profileToProto(profile)}, nil
}

// userToProto converts a store user to its wire representation.
//
// The password hash never crosses this boundary: store reads do not carry
// it and the wire type has no field for it.
func userToProto(u *store.User) *userpb.User {
	return &userpb.User{
		Id:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		MiddleName: stringPtrToWrapper(u.MiddleName),
		LastName:   u.LastName,
		Status:     u.Status,
	}
}

// profileToProto converts a store profile to its wire representation.
func profileToProto(p *store.Profile) *userpb.Profile {
	out := &userpb.Profile{
		UserId:      p.UserID,
		DisplayName: stringPtrToWrapper(p.DisplayName),
		AvatarUrl:   stringPtrToWrapper(p.AvatarURL),
		Settings:    p.Settings,
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = timestamppb.New(*p.UpdatedAt)
	}
	return out
}

// stringPtrToWrapper maps an absent value to an unset wrapper, preserving
// the distinction between "no value" and "empty string".
func stringPtrToWrapper(s *string) *wrapperspb.StringValue {
	if s == nil {
		return nil
	}
	return wrapperspb.String(*s)
}

func wrapperToStringPtr(w *wrapperspb.StringValue) *string {
	if w == nil {
		return nil
	}
	v := w.GetValue()
	return &v
}
