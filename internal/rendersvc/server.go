package rendersvc

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"textimg-service/internal/apperr"
	"textimg-service/internal/render"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "textimg.v1.Renderer"

const (
	textToImageMethod = "/" + ServiceName + "/TextToImage"
	addTextMethod     = "/" + ServiceName + "/AddTextToImage"
)

// RendererServer is the server API of the Renderer service. Requests carry
// the same parameters as the HTTP query string; responses hold PNG bytes.
type RendererServer interface {
	TextToImage(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	AddTextToImage(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// Renderer produces PNG bytes for parsed requests.
type Renderer interface {
	TextToImage(ctx context.Context, req render.TextToImageRequest) ([]byte, error)
	AddText(ctx context.Context, req render.AddTextRequest) ([]byte, error)
}

type Server struct {
	renderer Renderer
}

func NewServer(renderer Renderer) *Server {
	return &Server{renderer: renderer}
}

func (s *Server) TextToImage(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	req, err := render.ParseTextToImage(structValues(in))
	if err != nil {
		return nil, toStatus(err)
	}
	payload, err := s.renderer.TextToImage(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(payload), nil
}

func (s *Server) AddTextToImage(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	req, err := render.ParseAddText(structValues(in))
	if err != nil {
		return nil, toStatus(err)
	}
	payload, err := s.renderer.AddText(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(payload), nil
}

// Register adds the Renderer service and a health service reporting it as
// serving.
func Register(s *grpc.Server, srv RendererServer) *health.Server {
	s.RegisterService(&serviceDesc, srv)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

// LogUnary logs every unary call with its outcome and latency.
func LogUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.Printf("%s code=%s %s", info.FullMethod, status.Code(err), time.Since(start))
	return resp, err
}

func structValues(in *structpb.Struct) render.Values {
	fields := in.GetFields()
	return func(key string) string {
		v, ok := fields[key]
		if !ok {
			return ""
		}
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			return kind.StringValue
		case *structpb.Value_NumberValue:
			return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
		case *structpb.Value_BoolValue:
			if kind.BoolValue {
				return "true"
			}
		}
		return ""
	}
}

// Reasons attached to failed calls as an errdetails.ErrorInfo so clients
// can tell a failed render apart from a transport failure.
const (
	reasonInvalidInput = "INVALID_INPUT"
	reasonFetch        = "FETCH_FAILED"
	reasonRender       = "RENDER_FAILED"

	detailKey = "detail"
)

func toStatus(err error) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	code, reason := codes.Internal, reasonRender
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		code, reason = codes.InvalidArgument, reasonInvalidInput
	case apperr.KindFetch:
		code, reason = codes.Unavailable, reasonFetch
	}

	detail := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Err != nil {
		detail = appErr.Err.Error()
	}
	st := status.New(code, err.Error())
	if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   ServiceName,
		Metadata: map[string]string{detailKey: detail},
	}); derr == nil {
		st = withInfo
	}
	return st.Err()
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RendererServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TextToImage", Handler: textToImageHandler},
		{MethodName: "AddTextToImage", Handler: addTextHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "textimg/v1/renderer.proto",
}

func textToImageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RendererServer).TextToImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: textToImageMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RendererServer).TextToImage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func addTextHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RendererServer).AddTextToImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: addTextMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RendererServer).AddTextToImage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
