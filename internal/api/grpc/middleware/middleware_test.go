package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcctx "github.com/dtroode/kapu-recovery/internal/api/grpc/context"
	"github.com/dtroode/kapu-recovery/internal/testutil"
)

func TestRequestID_HandleGRPC(t *testing.T) {
	t.Parallel()

	cm := grpcctx.NewManager()
	mw := NewRequestID(cm)
	info := &grpc.UnaryServerInfo{FullMethod: "/kapu.recovery.v1.Recovery/IssueBackup"}

	existing := uuid.New()

	tests := []struct {
		name string
		ctx  context.Context
		want func(t *testing.T, got uuid.UUID)
	}{
		{
			name: "existing id kept",
			ctx:  cm.SetRequestIDToContext(context.Background(), existing),
			want: func(t *testing.T, got uuid.UUID) {
				assert.Equal(t, existing, got)
			},
		},
		{
			name: "missing id generated",
			ctx:  context.Background(),
			want: func(t *testing.T, got uuid.UUID) {
				assert.NotEqual(t, uuid.Nil, got)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seen uuid.UUID
			_, err := mw.HandleGRPC(tt.ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				id, ok := cm.GetRequestIDFromContext(ctx)
				require.True(t, ok)
				seen = id
				return nil, nil
			})
			require.NoError(t, err)
			tt.want(t, seen)
		})
	}
}

func TestRateLimiter_Limit(t *testing.T) {
	t.Parallel()

	l := NewRateLimiter(rate.NewLimiter(0, 2))
	assert.NoError(t, l.Limit(context.Background()))
	assert.NoError(t, l.Limit(context.Background()))
	assert.Equal(t, codes.ResourceExhausted, status.Code(l.Limit(context.Background())))

	unlimited := NewRateLimiter(nil)
	for i := 0; i < 5; i++ {
		assert.NoError(t, unlimited.Limit(context.Background()))
	}
}

func TestRecover_HandlePanic(t *testing.T) {
	t.Parallel()

	err := NewRecover(testutil.MakeNoopLogger()).HandlePanic(context.Background(), "boom")
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal server error", st.Message())
}
