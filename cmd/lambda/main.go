// Command lambda serves the recruiting API behind API Gateway.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/DeanLuus22021994/recruit/internal/app"
	"github.com/DeanLuus22021994/recruit/internal/config"
	"github.com/DeanLuus22021994/recruit/internal/lambdaproxy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("start application", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	lambda.Start(lambdaproxy.Adapt(a.Router))
}
