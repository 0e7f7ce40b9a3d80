package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/camera"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/logger"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/metrics"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/streamserver"
)

// errUsage marks command-line parse failures.
var errUsage = errors.New("usage")

type options struct {
	cfg      camera.Config
	logColor bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fakecam: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	cfg := opts.cfg

	// Initialize logger
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, opts.logColor)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Probe {
		probeImages(cfg.Images)
	}

	m := metrics.New()
	srv, err := streamserver.NewServer(cfg, m)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Bind before serving so a bad address exits non-zero right away.
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("Failed to bind %s: %v", cfg.Addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("Main", "Metrics server listening on %s", cfg.MetricsAddr)
			if err := m.StartServer(cfg.MetricsAddr); err != nil {
				logger.Error("Main", "Metrics server error: %v", err)
			}
		}()
	}
	if cfg.PprofAddr != "" {
		go func() {
			logger.Info("Main", "pprof server listening on %s", cfg.PprofAddr)
			if err := http.ListenAndServe(cfg.PprofAddr, pprofMux()); err != nil {
				logger.Error("Main", "pprof server error: %v", err)
			}
		}()
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info("Main", "Fake camera listening on %s", ln.Addr())
	logger.Info("Main", "Images: %d, interval: %s, boundary: %s", len(cfg.Images), cfg.Interval, cfg.Boundary)
	logger.Info("Main", "Log level: %s", level)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Main", "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Main", "Shutdown incomplete, closing connections: %v", err)
			httpServer.Close()
		}
		logger.Info("Main", "Server stopped")
	}
}

// parseArgs builds the configuration from defaults, an optional YAML file,
// then flags and positional image paths. Flags given on the command line
// win over the file.
func parseArgs(args []string, output io.Writer) (options, error) {
	opts := options{cfg: camera.DefaultConfig()}
	cfg := &opts.cfg

	var configPath string
	fs := flag.NewFlagSet("fakecam", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: fakecam [flags] IMAGE...\n\nServes IMAGE files in a loop as a multipart/x-mixed-replace stream.\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server listen address")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "HTTP server listen address (shorthand)")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Delay between frames")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Metrics server address (empty disables)")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "pprof server address (empty disables)")
	fs.BoolVar(&cfg.Probe, "probe", cfg.Probe, "Decode image headers at startup and log dimensions")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error, silent)")
	fs.BoolVar(&opts.logColor, "log-color", true, "Enable colored log output")

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}

	if configPath != "" {
		fileCfg := camera.DefaultConfig()
		if err := camera.LoadFile(configPath, &fileCfg); err != nil {
			return opts, err
		}
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		if set["addr"] || set["a"] {
			fileCfg.Addr = cfg.Addr
		}
		if set["interval"] {
			fileCfg.Interval = cfg.Interval
		}
		if set["metrics"] {
			fileCfg.MetricsAddr = cfg.MetricsAddr
		}
		if set["pprof"] {
			fileCfg.PprofAddr = cfg.PprofAddr
		}
		if set["probe"] {
			fileCfg.Probe = cfg.Probe
		}
		if set["log-level"] {
			fileCfg.LogLevel = cfg.LogLevel
		}
		opts.cfg = fileCfg
	}

	if fs.NArg() > 0 {
		opts.cfg.Images = fs.Args()
	}
	if len(opts.cfg.Images) == 0 {
		fs.Usage()
		return opts, camera.ErrNoImages
	}

	return opts, nil
}

func probeImages(paths []string) {
	for _, path := range paths {
		info, err := camera.Probe(path)
		if err != nil {
			logger.Warn("Probe", "%s: %v (content type %s)", path, err, camera.ContentType(path))
			continue
		}
		logger.Info("Probe", "%s: %s %dx%d (content type %s)", path, info.Format, info.Width, info.Height, camera.ContentType(path))
	}
}

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
