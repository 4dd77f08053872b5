package rpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/veterinaryhq/userd/pkg/config"
	"github.com/veterinaryhq/userd/pkg/store"
	"github.com/veterinaryhq/userd/pkg/userpb"
)

// startBufconnServer serves the given store on an in-memory listener and
// returns a connected client. Everything is torn down with the test.
func startBufconnServer(t *testing.T, st store.UserStore) userpb.UserServiceClient {
	t.Helper()

	srv, err := NewServer(config.ServerConfig{}, 2*time.Second, st, nil)
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.serve(ctx, lis)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveDone:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down in time")
		}
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return userpb.NewUserServiceClient(conn)
}

func TestServerEndToEnd(t *testing.T) {
	st := &fakeStore{
		getUserByID: func(ctx context.Context, id string) (*store.User, error) {
			if id != "u-1" {
				return nil, store.NewNotFoundError("user")
			}
			return &store.User{
				ID:        "u-1",
				Email:     "ada@example.com",
				FirstName: "Ada",
				LastName:  "Lovelace",
				Status:    store.StatusActive,
			}, nil
		},
		createUser: func(ctx context.Context, user *store.User) error {
			return nil
		},
	}

	client := startBufconnServer(t, st)
	ctx := context.Background()

	t.Run("GetUserById", func(t *testing.T) {
		resp, err := client.GetUserById(ctx, &userpb.GetUserByIdRequest{Id: "u-1"})
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", resp.GetUser().GetEmail())
	})

	t.Run("NotFoundCrossesTheWire", func(t *testing.T) {
		_, err := client.GetUserById(ctx, &userpb.GetUserByIdRequest{Id: "u-404"})
		require.Error(t, err)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("InvalidArgumentCrossesTheWire", func(t *testing.T) {
		_, err := client.GetUserById(ctx, &userpb.GetUserByIdRequest{})
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("CreateUser", func(t *testing.T) {
		resp, err := client.CreateUser(ctx, &userpb.CreateUserRequest{
			Email:    "grace@example.com",
			Password: "opaque",
		})
		require.NoError(t, err)
		assert.True(t, resp.GetSuccess())
		assert.NotEmpty(t, resp.GetId())
	})
}

func TestServerConcurrentRequests(t *testing.T) {
	st := &fakeStore{
		getUserByID: func(ctx context.Context, id string) (*store.User, error) {
			return &store.User{
				ID:        id,
				Email:     "ada@example.com",
				FirstName: "Ada",
				LastName:  "Lovelace",
				Status:    store.StatusActive,
			}, nil
		},
	}

	client := startBufconnServer(t, st)

	const workers = 32
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("u-%d", n)
			resp, err := client.GetUserById(context.Background(), &userpb.GetUserByIdRequest{Id: id})
			if err != nil {
				errs <- err
				return
			}
			if got := resp.GetUser().GetId(); got != id {
				errs <- fmt.Errorf("got id %q, want %q", got, id)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent request failed: %v", err)
	}
}

func TestServerRecoversFromPanic(t *testing.T) {
	st := &fakeStore{
		getUserByID: func(ctx context.Context, id string) (*store.User, error) {
			panic("handler bug")
		},
	}

	client := startBufconnServer(t, st)

	_, err := client.GetUserById(context.Background(), &userpb.GetUserByIdRequest{Id: "u-1"})
	require.Error(t, err)

	st2 := status.Convert(err)
	assert.Equal(t, codes.Internal, st2.Code())
	assert.NotContains(t, st2.Message(), "handler bug")

	// The server must still serve after the panic
	_, err = client.GetUserById(context.Background(), &userpb.GetUserByIdRequest{Id: "u-2"})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestShortMethod(t *testing.T) {
	assert.Equal(t, "GetUserById", shortMethod("/user.v1.UserService/GetUserById"))
	assert.Equal(t, "GetUserById", shortMethod("GetUserById"))
}
