package sessionsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	SessionsService_CreateSession_FullMethodName  = "/sessions.v1.SessionsService/CreateSession"
	SessionsService_RefreshSession_FullMethodName = "/sessions.v1.SessionsService/RefreshSession"
	SessionsService_RevokeSessions_FullMethodName = "/sessions.v1.SessionsService/RevokeSessions"
	SessionsService_UpdatePassword_FullMethodName = "/sessions.v1.SessionsService/UpdatePassword"
)

// SessionsServiceClient — клиентский интерфейс SessionsService.
type SessionsServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*SessionPairResponse, error)
	RefreshSession(ctx context.Context, in *RefreshSessionRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RevokeSessions(ctx context.Context, in *RevokeSessionsRequest, opts ...grpc.CallOption) (*RevokeSessionsResponse, error)
	UpdatePassword(ctx context.Context, in *UpdatePasswordRequest, opts ...grpc.CallOption) (*SessionPairResponse, error)
}

type sessionsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionsServiceClient создаёт клиента поверх соединения. Все вызовы
// выполняются с кодеком пакета (CallContentSubtype подставляется здесь,
// вызывающей стороне настраивать его не нужно).
func NewSessionsServiceClient(cc grpc.ClientConnInterface) SessionsServiceClient {
	return &sessionsServiceClient{cc: cc}
}

func (c *sessionsServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	callOpts := make([]grpc.CallOption, 0, len(opts)+1)
	callOpts = append(callOpts, grpc.CallContentSubtype(CodecName))
	callOpts = append(callOpts, opts...)

	return c.cc.Invoke(ctx, method, in, out, callOpts...)
}

func (c *sessionsServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*SessionPairResponse, error) {
	out := new(SessionPairResponse)
	if err := c.invoke(ctx, SessionsService_CreateSession_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *sessionsServiceClient) RefreshSession(ctx context.Context, in *RefreshSessionRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	out := new(TokenResponse)
	if err := c.invoke(ctx, SessionsService_RefreshSession_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *sessionsServiceClient) RevokeSessions(ctx context.Context, in *RevokeSessionsRequest, opts ...grpc.CallOption) (*RevokeSessionsResponse, error) {
	out := new(RevokeSessionsResponse)
	if err := c.invoke(ctx, SessionsService_RevokeSessions_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *sessionsServiceClient) UpdatePassword(ctx context.Context, in *UpdatePasswordRequest, opts ...grpc.CallOption) (*SessionPairResponse, error) {
	out := new(SessionPairResponse)
	if err := c.invoke(ctx, SessionsService_UpdatePassword_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

// SessionsServiceServer — серверный интерфейс SessionsService.
// Реализации должны встраивать UnimplementedSessionsServiceServer.
type SessionsServiceServer interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest) (*SessionPairResponse, error)
	RefreshSession(ctx context.Context, in *RefreshSessionRequest) (*TokenResponse, error)
	RevokeSessions(ctx context.Context, in *RevokeSessionsRequest) (*RevokeSessionsResponse, error)
	UpdatePassword(ctx context.Context, in *UpdatePasswordRequest) (*SessionPairResponse, error)
	mustEmbedUnimplementedSessionsServiceServer()
}

// UnimplementedSessionsServiceServer отвечает Unimplemented на все методы.
type UnimplementedSessionsServiceServer struct{}

func (UnimplementedSessionsServiceServer) CreateSession(context.Context, *CreateSessionRequest) (*SessionPairResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}

func (UnimplementedSessionsServiceServer) RefreshSession(context.Context, *RefreshSessionRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshSession not implemented")
}

func (UnimplementedSessionsServiceServer) RevokeSessions(context.Context, *RevokeSessionsRequest) (*RevokeSessionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RevokeSessions not implemented")
}

func (UnimplementedSessionsServiceServer) UpdatePassword(context.Context, *UpdatePasswordRequest) (*SessionPairResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePassword not implemented")
}

func (UnimplementedSessionsServiceServer) mustEmbedUnimplementedSessionsServiceServer() {}

// RegisterSessionsServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterSessionsServiceServer(s grpc.ServiceRegistrar, srv SessionsServiceServer) {
	s.RegisterService(&SessionsService_ServiceDesc, srv)
}

func _SessionsService_CreateSession_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SessionsServiceServer).CreateSession(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SessionsService_CreateSession_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsServiceServer).CreateSession(ctx, req.(*CreateSessionRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _SessionsService_RefreshSession_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RefreshSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SessionsServiceServer).RefreshSession(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SessionsService_RefreshSession_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsServiceServer).RefreshSession(ctx, req.(*RefreshSessionRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _SessionsService_RevokeSessions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RevokeSessionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SessionsServiceServer).RevokeSessions(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SessionsService_RevokeSessions_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsServiceServer).RevokeSessions(ctx, req.(*RevokeSessionsRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func _SessionsService_UpdatePassword_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdatePasswordRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SessionsServiceServer).UpdatePassword(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SessionsService_UpdatePassword_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsServiceServer).UpdatePassword(ctx, req.(*UpdatePasswordRequest))
	}

	return interceptor(ctx, in, info, handler)
}

// SessionsService_ServiceDesc — описание сервиса для grpc.RegisterService.
var SessionsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sessions.v1.SessionsService",
	HandlerType: (*SessionsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateSession",
			Handler:    _SessionsService_CreateSession_Handler,
		},
		{
			MethodName: "RefreshSession",
			Handler:    _SessionsService_RefreshSession_Handler,
		},
		{
			MethodName: "RevokeSessions",
			Handler:    _SessionsService_RevokeSessions_Handler,
		},
		{
			MethodName: "UpdatePassword",
			Handler:    _SessionsService_UpdatePassword_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sessions/v1/sessions.go",
}
