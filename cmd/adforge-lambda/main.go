// Package main serves the AdForge API from AWS Lambda behind API Gateway
// (HTTP API, payload format 2.0).
//
// The handler chain is the same one cmd/adforge serves locally. Logs are JSON
// and EMF metric documents go to stdout for CloudWatch to pick up.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/config"
	"github.com/fpang/adforge/internal/httpapi"
	"github.com/fpang/adforge/internal/lambdaboot"
	"github.com/fpang/adforge/internal/logging"
)

var adapter *httpadapter.HandlerAdapterV2

func init() {
	initStart := time.Now()
	if os.Getenv("ADFORGE_LOG_FORMAT") == "" {
		os.Setenv("ADFORGE_LOG_FORMAT", "json")
	}
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	rt, err := lambdaboot.Boot(context.Background(), cfg, lambdaboot.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}

	handler := httpapi.NewHandler(rt.Service, httpapi.Options{OriginVerifySecret: rt.Config.OriginVerifySecret})
	if rt.Config.OriginVerifySecret == "" {
		log.Warn().Msg("Origin verify secret not configured; direct API Gateway access allowed")
	}
	adapter = httpadapter.NewV2(handler)

	lambdaboot.StartupLog("adforge-lambda", initStart, rt).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Log()
}

func main() {
	lambda.Start(adapter.ProxyWithContext)
}
