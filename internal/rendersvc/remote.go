package rendersvc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"textimg-service/internal/apperr"
	"textimg-service/internal/render"
)

// Remote renders parsed requests on a Renderer service. It satisfies the
// same interface as an in-process render.Service, and failed calls come
// back as apperr kinds.
type Remote struct {
	client *Client
	opts   []grpc.CallOption
}

func NewRemote(cc grpc.ClientConnInterface, opts ...grpc.CallOption) *Remote {
	return &Remote{client: NewClient(cc), opts: opts}
}

func (r *Remote) TextToImage(ctx context.Context, req render.TextToImageRequest) ([]byte, error) {
	payload, err := r.client.TextToImage(ctx, req.Params(), r.opts...)
	if err != nil {
		return nil, fromStatus("remote text-to-image", err)
	}
	return payload, nil
}

func (r *Remote) AddText(ctx context.Context, req render.AddTextRequest) ([]byte, error) {
	payload, err := r.client.AddTextToImage(ctx, req.Params(), r.opts...)
	if err != nil {
		return nil, fromStatus("remote add-text-to-img", err)
	}
	return payload, nil
}

// fromStatus reverses toStatus. Calls that never reached the service carry
// no ErrorInfo and count as render failures.
func fromStatus(op string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return apperr.New(apperr.KindRender, op, err)
	}
	switch st.Code() {
	case codes.Canceled:
		return fmt.Errorf("%s: %s: %w", op, st.Message(), context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%s: %s: %w", op, st.Message(), context.DeadlineExceeded)
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ServiceName {
			continue
		}
		detail := errors.New(info.GetMetadata()[detailKey])
		switch info.GetReason() {
		case reasonInvalidInput:
			return apperr.New(apperr.KindInvalidInput, op, detail)
		case reasonFetch:
			return apperr.New(apperr.KindFetch, op, detail)
		default:
			return apperr.New(apperr.KindRender, op, detail)
		}
	}

	if st.Code() == codes.InvalidArgument {
		return apperr.New(apperr.KindInvalidInput, op, errors.New(st.Message()))
	}
	return apperr.New(apperr.KindRender, op, err)
}
