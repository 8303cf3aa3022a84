package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/minimart/console/internal/api"
	"github.com/minimart/console/internal/catalog"
	"github.com/minimart/console/internal/console"
	"github.com/minimart/console/internal/session"
	"github.com/minimart/console/pkg/httpclient"
)

// Run creates all dependencies and starts the console loop. It is the single
// wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Metrics, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("token_path", cfg.TokenPath),
	)

	tokens := session.NewFileStore(cfg.TokenPath)
	sessions := session.NewStore(tokens, lg.Named("session"))

	transport := httpclient.Wrap(
		otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
		httpclient.RequestID(),
		httpclient.LogRequests(),
		httpclient.BearerAuth(sessions),
	)

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		Transport: transport,
	})
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	// Restore settles before anything renders: screens never observe an
	// unknown session status, only logged-in or logged-out.
	sessions.Restore()

	ui := console.New(
		console.Config{DownloadDir: cfg.DownloadDir},
		os.Stdin, os.Stdout,
		sessions,
		client,
		catalog.NewLoader(client),
	)
	return ui.Run(zctx.Base(ctx, lg))
}
