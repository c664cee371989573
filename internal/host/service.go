package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "traa.host.v1.NativeHost"

// Full method names.
const (
	methodStringFromJNI = "/" + serviceName + "/StringFromJNI"
	methodInit          = "/" + serviceName + "/Init"
	methodRelease       = "/" + serviceName + "/Release"
	methodSetLogLevel   = "/" + serviceName + "/SetLogLevel"
	methodSetLog        = "/" + serviceName + "/SetLog"
)

// nativeHostServer is the server API of the native host service.
// Messages are protobuf well-known types, so no generated code is needed.
type nativeHostServer interface {
	StringFromJNI(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Init(context.Context, *structpb.Struct) (*wrapperspb.Int32Value, error)
	Release(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	SetLogLevel(context.Context, *wrapperspb.Int32Value) (*emptypb.Empty, error)
	SetLog(context.Context, *structpb.Struct) (*wrapperspb.Int32Value, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*nativeHostServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StringFromJNI",
			Handler: unaryHandler(methodStringFromJNI, func(s nativeHostServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.StringFromJNI(ctx, in)
			}),
		},
		{
			MethodName: "Init",
			Handler: unaryHandler(methodInit, func(s nativeHostServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Init(ctx, in)
			}),
		},
		{
			MethodName: "Release",
			Handler: unaryHandler(methodRelease, func(s nativeHostServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.Release(ctx, in)
			}),
		},
		{
			MethodName: "SetLogLevel",
			Handler: unaryHandler(methodSetLogLevel, func(s nativeHostServer, ctx context.Context, in *wrapperspb.Int32Value) (any, error) {
				return s.SetLogLevel(ctx, in)
			}),
		},
		{
			MethodName: "SetLog",
			Handler: unaryHandler(methodSetLog, func(s nativeHostServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.SetLog(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "traa/host/v1/native_host.proto",
}

// unaryHandler builds a grpc.MethodHandler the same way protoc-gen-go-grpc does.
func unaryHandler[Req any](fullMethod string, call func(nativeHostServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(nativeHostServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(nativeHostServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// grpcServer serves a backend inside the host process.
type grpcServer struct {
	impl   runtime.Backend
	logger hclog.Logger
}

var _ nativeHostServer = (*grpcServer)(nil)

func (s *grpcServer) StringFromJNI(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	text, err := s.impl.StringFromJNI(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(text), nil
}

func (s *grpcServer) Init(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int32Value, error) {
	cfg := decodeConfig(in)
	if eventsRequested(in) {
		cfg.Handler = logEvents(s.logger)
	}
	return codeResult(s.impl.Init(ctx, cfg))
}

func (s *grpcServer) Release(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.impl.Release(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *grpcServer) SetLogLevel(ctx context.Context, in *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	if err := s.impl.SetLogLevel(ctx, traa.LogLevel(in.GetValue())); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *grpcServer) SetLog(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int32Value, error) {
	return codeResult(s.impl.SetLog(ctx, decodeLogConfig(in)))
}

// codeResult reports native result codes in the response and everything else as a status.
func codeResult(err error) (*wrapperspb.Int32Value, error) {
	var native *traa.Error
	if errors.As(err, &native) {
		return wrapperspb.Int32(int32(native.Code)), nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int32(int32(traa.CodeNone)), nil
}

// toStatus converts a backend error into a gRPC status. Native result codes
// travel as an Int32Value detail.
func toStatus(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	var native *traa.Error
	if errors.As(err, &native) {
		st := status.New(codes.FailedPrecondition, err.Error())
		if withCode, detailErr := st.WithDetails(wrapperspb.Int32(int32(native.Code))); detailErr == nil {
			st = withCode
		}
		return st.Err()
	}

	if errors.Is(err, traa.ErrInvalidArgument) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus converts a gRPC error returned by the host back into the
// errors an in-process backend would have produced.
func fromStatus(op string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, detail := range st.Details() {
		if code, ok := detail.(*wrapperspb.Int32Value); ok {
			return &traa.Error{Op: op, Code: traa.Code(code.GetValue())}
		}
	}

	switch st.Code() {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", traa.ErrInvalidArgument, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: native host: %s", traa.ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("native host %s: %s", op, st.Message())
	}
}

// logEvents forwards native events to the host log, which go-plugin relays to the client.
func logEvents(logger hclog.Logger) traa.EventHandler {
	return traa.EventHandlerFuncs{
		Error: func(code traa.Code, message string) {
			logger.Error("native error", "code", code.String(), "message", message)
		},
		DeviceEvent: func(info traa.DeviceInfo, event traa.DeviceEvent) {
			logger.Info("device event",
				"event", int32(event),
				"device_id", info.ID,
				"device_name", info.Name,
				"device_type", int32(info.Type),
			)
		},
	}
}
