package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const serviceTokenHeader = "x-service-token"

// ErrServiceTokenRequired is returned when the server is built without a token.
var ErrServiceTokenRequired = errors.New("service auth token required")

// ServiceAuth checks the x-service-token metadata of every incoming call,
// unary or streaming, against one shared token.
type ServiceAuth struct {
	token []byte
}

func NewServiceAuth(token string) (*ServiceAuth, error) {
	if token == "" {
		return nil, ErrServiceTokenRequired
	}
	return &ServiceAuth{token: []byte(token)}, nil
}

func (a *ServiceAuth) authorize(ctx context.Context) error {
	presented := serviceTokenFromMetadata(ctx)
	if presented == "" {
		return status.Error(codes.Unauthenticated, "missing_service_token")
	}
	if subtle.ConstantTimeCompare([]byte(presented), a.token) != 1 {
		return status.Error(codes.PermissionDenied, "invalid_service_token")
	}
	return nil
}

func (a *ServiceAuth) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if err := a.authorize(ctx); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// Stream guards server-streaming calls such as Health/Watch before the
// handler sends anything.
func (a *ServiceAuth) Stream() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := a.authorize(ss.Context()); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func serviceTokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(serviceTokenHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
