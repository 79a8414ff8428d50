package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"textimg-service/internal/config"
	"textimg-service/internal/fetch"
	"textimg-service/internal/fonts"
	"textimg-service/internal/logging"
	"textimg-service/internal/render"
	"textimg-service/internal/rendersvc"
)

const maxMessageBytes = 32 << 20

func main() {
	cfg := config.Load()
	addr := flag.String("addr", cfg.RendererAddr, "gRPC listen address")
	fontsDir := flag.String("fonts", cfg.FontsDir, "font directory")
	flag.Parse()

	logFile, err := logging.Setup("renderer", cfg.LogDir)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	library, err := fonts.Open(*fontsDir)
	if err != nil {
		log.Fatalf("failed to open fonts dir=%s: %v", *fontsDir, err)
	}
	if cfg.WatchFonts {
		if err := library.Watch(ctx); err != nil {
			logging.Warnf("font watch disabled dir=%s err=%v", *fontsDir, err)
		}
	}

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *addr, err)
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(rendersvc.LogUnary),
		grpc.MaxSendMsgSize(maxMessageBytes),
	)
	health := rendersvc.Register(server, rendersvc.NewServer(&render.Service{
		Fonts:   library,
		Fetcher: fetch.NewClient(cfg.FetchTimeout, cfg.MaxBackgroundBytes),
	}))

	go func() {
		<-ctx.Done()
		health.Shutdown()
		server.GracefulStop()
	}()

	log.Printf("renderer gRPC listening on %s", *addr)
	if err := server.Serve(listener); err != nil {
		log.Fatalf("renderer gRPC stopped: %v", err)
	}
}
