package recoveryrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "kapu.recovery.v1.Recovery"

	IssueBackupMethod   = "/" + ServiceName + "/IssueBackup"
	ValidateTokenMethod = "/" + ServiceName + "/ValidateToken"
	RedeemBackupMethod  = "/" + ServiceName + "/RedeemBackup"
)

// RecoveryServer is the server API for the recovery service.
type RecoveryServer interface {
	IssueBackup(context.Context, *IssueBackupRequest) (*IssueBackupResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
	RedeemBackup(context.Context, *RedeemBackupRequest) (*RedeemBackupResponse, error)
}

// UnimplementedRecoveryServer can be embedded to have forward compatible implementations.
type UnimplementedRecoveryServer struct{}

func (UnimplementedRecoveryServer) IssueBackup(context.Context, *IssueBackupRequest) (*IssueBackupResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IssueBackup not implemented")
}

func (UnimplementedRecoveryServer) ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateToken not implemented")
}

func (UnimplementedRecoveryServer) RedeemBackup(context.Context, *RedeemBackupRequest) (*RedeemBackupResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RedeemBackup not implemented")
}

// RegisterRecoveryServer registers srv on s.
func RegisterRecoveryServer(s grpc.ServiceRegistrar, srv RecoveryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func issueBackupHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(IssueBackupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecoveryServer).IssueBackup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IssueBackupMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecoveryServer).IssueBackup(ctx, req.(*IssueBackupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func validateTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateTokenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecoveryServer).ValidateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateTokenMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecoveryServer).ValidateToken(ctx, req.(*ValidateTokenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func redeemBackupHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RedeemBackupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecoveryServer).RedeemBackup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RedeemBackupMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecoveryServer).RedeemBackup(ctx, req.(*RedeemBackupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the recovery service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecoveryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "IssueBackup", Handler: issueBackupHandler},
		{MethodName: "ValidateToken", Handler: validateTokenHandler},
		{MethodName: "RedeemBackup", Handler: redeemBackupHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kapu/recovery/v1/recovery",
}
