// Package main runs the snaplabel API as an AWS Lambda function behind an
// API Gateway REST proxy integration.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/saransh1220/snaplabel/internal/gateway"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
	"github.com/saransh1220/snaplabel/internal/shared/log"
)

func main() {
	logger := log.New(os.Stdout, log.Options{JSON: true, Verbose: os.Getenv("LOG_LEVEL") == "debug"})

	cfg := lambdaConfig(config.Load())
	app, err := gateway.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	lambda.Start(gateway.NewProxyHandler(app.Handler))
}

// lambdaConfig applies the defaults of a Lambda deployment: objects live in
// S3 and analyses in DynamoDB unless the environment says otherwise.
func lambdaConfig(cfg config.Config) config.Config {
	if os.Getenv("ANALYSIS_STORE") == "" {
		cfg.Store.Backend = "dynamodb"
	}
	if os.Getenv("RESULT_CACHE_ENABLED") == "" {
		cfg.Store.CacheEnabled = false
	}
	cfg.FileStorage.UseS3 = true
	return cfg
}
