package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"textimg-service/internal/cache"
	"textimg-service/internal/config"
	"textimg-service/internal/fetch"
	"textimg-service/internal/fonts"
	"textimg-service/internal/gateway"
	"textimg-service/internal/logging"
	"textimg-service/internal/render"
	"textimg-service/internal/rendersvc"
)

const maxMessageBytes = 32 << 20

func main() {
	cfg := config.Load()
	addr := flag.String("addr", cfg.GatewayAddr, "HTTP listen address")
	fontsDir := flag.String("fonts", cfg.FontsDir, "font directory")
	rendererTarget := flag.String("renderer", cfg.RendererTarget, "gRPC renderer target, empty renders in process")
	flag.Parse()

	logFile, err := logging.Setup("gateway", cfg.LogDir)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []gateway.Option{}
	if cfg.DeveloperGithub != "" {
		opts = append(opts, gateway.WithDeveloper(gateway.GithubDeveloper(cfg.DeveloperGithub)))
	}

	var renderer gateway.Renderer
	if *rendererTarget != "" {
		conn, err := grpc.NewClient(*rendererTarget,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageBytes)),
		)
		if err != nil {
			log.Fatalf("failed to dial renderer target=%s: %v", *rendererTarget, err)
		}
		defer conn.Close()
		renderer = rendersvc.NewRemote(conn)
		log.Printf("starting gateway addr=%s renderer=%s cache_ttl=%s cache_max=%d", *addr, *rendererTarget, cfg.CacheTTL, cfg.CacheMaxEntries)
	} else {
		library, err := fonts.Open(*fontsDir)
		if err != nil {
			log.Fatalf("failed to open fonts dir=%s: %v", *fontsDir, err)
		}
		if cfg.WatchFonts {
			if err := library.Watch(ctx); err != nil {
				logging.Warnf("font watch disabled dir=%s err=%v", *fontsDir, err)
			}
		}
		renderer = &render.Service{
			Fonts:   library,
			Fetcher: fetch.NewClient(cfg.FetchTimeout, cfg.MaxBackgroundBytes),
		}
		opts = append(opts, gateway.WithFonts(library))
		log.Printf("starting gateway addr=%s fonts=%s (%d) cache_ttl=%s cache_max=%d", *addr, *fontsDir, len(library.Names()), cfg.CacheTTL, cfg.CacheMaxEntries)
	}

	responses := cache.NewTTL(cfg.CacheTTL, cfg.CacheMaxEntries)
	server := &http.Server{
		Addr:              *addr,
		Handler:           gateway.New(renderer, responses, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("gateway shutdown: %v", err)
		}
	}()

	log.Printf("gateway listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("gateway stopped: %v", err)
	}
}
