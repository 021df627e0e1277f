package recoveryrpc

import (
	"context"

	"google.golang.org/grpc"
)

// RecoveryClient is the client API for the recovery service.
type RecoveryClient interface {
	IssueBackup(ctx context.Context, in *IssueBackupRequest, opts ...grpc.CallOption) (*IssueBackupResponse, error)
	ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error)
	RedeemBackup(ctx context.Context, in *RedeemBackupRequest, opts ...grpc.CallOption) (*RedeemBackupResponse, error)
}

type recoveryClient struct {
	cc grpc.ClientConnInterface
}

// NewRecoveryClient returns a client that always speaks the JSON codec.
func NewRecoveryClient(cc grpc.ClientConnInterface) RecoveryClient {
	return &recoveryClient{cc: cc}
}

func (c *recoveryClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *recoveryClient) IssueBackup(ctx context.Context, in *IssueBackupRequest, opts ...grpc.CallOption) (*IssueBackupResponse, error) {
	out := new(IssueBackupResponse)
	if err := c.invoke(ctx, IssueBackupMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recoveryClient) ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error) {
	out := new(ValidateTokenResponse)
	if err := c.invoke(ctx, ValidateTokenMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recoveryClient) RedeemBackup(ctx context.Context, in *RedeemBackupRequest, opts ...grpc.CallOption) (*RedeemBackupResponse, error) {
	out := new(RedeemBackupResponse)
	if err := c.invoke(ctx, RedeemBackupMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
