package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-rfc/ssestream/pkg/broker"
	"github.com/go-rfc/ssestream/pkg/event"
	"github.com/go-rfc/ssestream/pkg/stream"
)

type serveCommander struct {
	listen      string
	pingEvery   time.Duration
	sendTimeout time.Duration
	retry       time.Duration
	debug       bool
}

func newServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "sse-serve",
		Short: "Demo event-stream server",
		Long: `sse-serve runs a small event-stream server.

  GET  /events?topic=<name>   subscribe to a topic
  POST /publish?topic=<name>  publish the request body to a topic

A clock event is published on the "clock" topic every second.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", ":8080", "address to listen on")
	cmd.Flags().DurationVar(&cmder.pingEvery, "ping", stream.DefaultPingInterval, "keep-alive ping interval")
	cmd.Flags().DurationVar(&cmder.sendTimeout, "send-timeout", 5*time.Second, "per-frame write timeout")
	cmd.Flags().DurationVar(&cmder.retry, "retry", 0, "client reconnection delay hint, 0 means no hint")
	cmd.Flags().BoolVarP(&cmder.debug, "debug", "d", false, "enable debug logging")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	log := c.newLogger()

	b := broker.New(broker.WithLogger(log))
	defer b.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", c.handleEvents(b, log))
	mux.HandleFunc("POST /publish", handlePublish(b))

	go publishClock(ctx, b)

	srv := &http.Server{Addr: c.listen, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	log.Info().Str("listen", c.listen).Msg("serving event streams")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (c *serveCommander) handleEvents(b *broker.Broker, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.URL.Query().Get("topic")
		if topic == "" {
			http.Error(w, "missing topic", http.StatusBadRequest)
			return
		}

		sub := b.Subscribe(topic)
		defer b.Unsubscribe(sub)

		s, err := stream.Upgrade(w, r,
			stream.WithLogger(log),
			stream.WithPingInterval(c.pingEvery),
			stream.WithSendTimeout(c.sendTimeout),
			stream.WithRetry(c.retry),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		_ = s.Serve(r.Context(), sub.Events())
	}
}

func handlePublish(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.URL.Query().Get("topic")
		if topic == "" {
			http.Error(w, "missing topic", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ev := event.New(string(body), event.WithName(r.URL.Query().Get("event")))
		delivered := b.Publish(topic, ev)
		fmt.Fprintf(w, "delivered to %d subscribers\n", delivered)
	}
}

func publishClock(ctx context.Context, b *broker.Broker) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			seq++
			payload, _ := json.Marshal(struct {
				Now string `json:"now"`
				Seq int    `json:"seq"`
			}{Now: now.Format(time.RFC3339), Seq: seq})

			b.Publish("clock", event.New(payload,
				event.WithName("clock"),
				event.WithID(strconv.Itoa(seq)),
			))
		}
	}
}

func (c *serveCommander) newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if c.debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newServeCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
