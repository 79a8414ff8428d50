package rendersvc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote Renderer service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// TextToImage renders a generated image. params uses the HTTP parameter
// names (text, font, font_size, color, bg_color, ...).
func (c *Client) TextToImage(ctx context.Context, params map[string]any, opts ...grpc.CallOption) ([]byte, error) {
	return c.invoke(ctx, textToImageMethod, params, opts...)
}

// AddTextToImage overlays text on the image at params["bg"].
func (c *Client) AddTextToImage(ctx context.Context, params map[string]any, opts ...grpc.CallOption) ([]byte, error) {
	return c.invoke(ctx, addTextMethod, params, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, params map[string]any, opts ...grpc.CallOption) ([]byte, error) {
	in, err := structpb.NewStruct(params)
	if err != nil {
		return nil, err
	}
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}
