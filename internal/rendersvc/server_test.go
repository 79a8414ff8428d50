package rendersvc

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"textimg-service/internal/fetch"
	"textimg-service/internal/render"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(LogUnary))
	Register(server, NewServer(&render.Service{Fetcher: fetch.NewClient(2*time.Second, 0)}))
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestTextToImageOverGRPC(t *testing.T) {
	client := NewClient(startServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := client.TextToImage(ctx, map[string]any{
		"text":       "over the wire",
		"min_size":   240,
		"max_size":   240,
		"font_size":  24,
		"text_align": "left",
	})
	if err != nil {
		t.Fatalf("text to image: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 240 {
		t.Fatalf("unexpected size: %v", b)
	}
}

func TestInvalidInputMapsToInvalidArgument(t *testing.T) {
	client := NewClient(startServer(t))
	_, err := client.TextToImage(context.Background(), map[string]any{"text": "hi", "text_align": "up"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = client.AddTextToImage(context.Background(), map[string]any{"text": "hi"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddTextToImageOverGRPC(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	bg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer bg.Close()

	client := NewClient(startServer(t))
	payload, err := client.AddTextToImage(context.Background(), map[string]any{"text": "hi", "bg": bg.URL + "/bg.png", "font_size": 12})
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("unexpected size: %v", b)
	}

	_, err = client.AddTextToImage(context.Background(), map[string]any{"text": "hi", "bg": bg.URL + "/missing.png"})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealthReportsServing(t *testing.T) {
	conn := startServer(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
}

func TestStructValues(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"s": "x", "n": 1.5, "i": 300, "t": true, "f": false, "null": nil})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	get := structValues(in)
	for key, want := range map[string]string{"s": "x", "n": "1.5", "i": "300", "t": "true", "f": "", "null": "", "absent": ""} {
		if got := get(key); got != want {
			t.Fatalf("%s: got %q want %q", key, got, want)
		}
	}
}
