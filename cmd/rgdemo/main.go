// Command rgdemo builds a small render graph and renders it headless at a
// fixed rate, exposing Prometheus metrics and optionally exporting graph
// events to Kafka.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/birdayz/rendergraph"
	"github.com/birdayz/rendergraph/dispatch"
	"github.com/birdayz/rendergraph/passes"
	"github.com/birdayz/rendergraph/pkg/log"
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rexport"
	"github.com/birdayz/rendergraph/rmetrics"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

type config struct {
	frames      uint64
	fps         int
	width       uint
	height      uint
	metricsAddr string
	brokers     string
	topic       string
	codec       string
	logLevel    string
	thread      bool
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("rgdemo", flag.ContinueOnError)
	fs.Uint64Var(&cfg.frames, "frames", 0, "Number of frames to render. 0 renders until interrupted.")
	fs.IntVar(&cfg.fps, "fps", 60, "Frames per second.")
	fs.UintVar(&cfg.width, "width", 1280, "Render target width.")
	fs.UintVar(&cfg.height, "height", 720, "Render target height.")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "localhost:9464", "Address of the Prometheus endpoint. Empty disables it.")
	fs.StringVar(&cfg.brokers, "brokers", "", "Comma separated Kafka brokers to export events to. Empty disables export.")
	fs.StringVar(&cfg.topic, "topic", "rendergraph-events", "Kafka topic for exported events.")
	fs.StringVar(&cfg.codec, "codec", "json", "Event encoding: 'json' or 'proto'.")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: 'debug', 'info', 'warn' or 'error'.")
	fs.BoolVar(&cfg.thread, "thread", false, "Run node init and deinit on a dedicated OS thread.")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.fps <= 0 {
		return cfg, fmt.Errorf("invalid fps %d", cfg.fps)
	}
	if cfg.codec != "json" && cfg.codec != "proto" {
		return cfg, fmt.Errorf("invalid codec %q: must be 'json' or 'proto'", cfg.codec)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zlog, err := log.New(os.Stderr, cfg.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error().Err(err).Msg("rgdemo failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, zlog *zerolog.Logger) error {
	bus := rbus.New(rendergraph.NullLogger())

	metrics := rmetrics.New()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return err
	}
	metrics.Subscribe(bus)

	var exporter *rexport.Exporter
	if cfg.brokers != "" {
		kcl, err := kgo.NewClient(kgo.SeedBrokers(strings.Split(cfg.brokers, ",")...))
		if err != nil {
			return err
		}
		defer kcl.Close()
		if err := rexport.EnsureTopic(ctx, kadm.NewClient(kcl), cfg.topic, 1, 1); err != nil {
			return err
		}
		var codec rexport.Codec = rexport.JSON{}
		if cfg.codec == "proto" {
			codec = rexport.Proto{}
		}
		exporter = rexport.New(kcl, cfg.topic, rexport.WithCodec(codec))
		exporter.Attach(bus)
	}

	var commands uint64
	factories := rnode.NewRegistry()
	err := passes.Register(factories, passes.Config{
		Descriptor: rport.Texture2D(rport.FormatRGBA8Unorm),
		Extent:     rpool.Extent{Width: uint32(cfg.width), Height: uint32(cfg.height)},
		ClearColor: color.RGBA{R: 30, G: 30, B: 46, A: 255},
		Submitter: passes.SubmitFunc(func(context.Context, passes.Command) error {
			commands++
			return nil
		}),
	})
	if err != nil {
		return err
	}

	opts := []rendergraph.Option{
		rendergraph.WithLogr(log.Logr(zlog)),
		rendergraph.WithBus(bus),
		rendergraph.WithFactories(factories),
		rendergraph.WithInterceptors(
			rnode.RecoverInterceptor(rendergraph.NullLogger()),
			metrics.Interceptor(),
		),
	}
	if cfg.thread {
		thread := dispatch.NewThread(rendergraph.NullLogger())
		defer thread.Close()
		opts = append(opts, rendergraph.WithDispatcher(thread))
	}

	eg, ctx := errgroup.WithContext(ctx)

	if cfg.metricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		eg.Go(func() error {
			zlog.Info().Str("addr", cfg.metricsAddr).Msg("Serving metrics")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		seg, err := buildSegment(ctx, opts)
		if err != nil {
			return err
		}
		defer func() {
			if err := seg.Close(context.Background()); err != nil {
				zlog.Warn().Err(err).Msg("Closing segment")
			}
		}()

		err = renderLoop(ctx, cfg, seg, exporter)
		zlog.Info().Uint64("commands", commands).Msg("Render loop stopped")
		return err
	})

	if err := eg.Wait(); !errors.Is(err, errFramesDone) {
		return err
	}
	return nil
}

// buildSegment wires background -> resolve -> output.
func buildSegment(ctx context.Context, opts []rendergraph.Option) (*rendergraph.Segment, error) {
	seg, err := rendergraph.New(ctx, "demo", opts...)
	if err != nil {
		return nil, err
	}
	bg, err := seg.AddNode(ctx, passes.TypeClear, "background")
	if err != nil {
		return nil, err
	}
	resolve, err := seg.AddNode(ctx, passes.TypeCopy, "resolve")
	if err != nil {
		return nil, err
	}
	if err := seg.Connect(bg.ID(), bg.Outputs()[0].ID, resolve.ID(), resolve.Inputs()[0].ID); err != nil {
		return nil, err
	}
	if err := seg.Connect(resolve.ID(), resolve.Outputs()[0].ID, seg.OutputNode().ID(), seg.Target()); err != nil {
		return nil, err
	}
	return seg, nil
}

func renderLoop(ctx context.Context, cfg config, seg *rendergraph.Segment, exporter *rexport.Exporter) error {
	ticker := time.NewTicker(time.Second / time.Duration(cfg.fps))
	defer ticker.Stop()

	start := time.Now()
	viewport := image.Rect(0, 0, int(cfg.width), int(cfg.height))
	for index := uint64(1); cfg.frames == 0 || index <= cfg.frames; index++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := seg.Render(ctx, rnode.Frame{
			Index:     index,
			Timestamp: time.Since(start),
			Viewport:  viewport,
		}); err != nil {
			return err
		}
		if exporter != nil {
			if err := exporter.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return errFramesDone
}

// errFramesDone stops the errgroup once the requested frames are rendered.
var errFramesDone = errors.New("all frames rendered")
