// Package lambdaboot provides the start-up sequence shared by the HTTP
// server, the CLI and the Lambda entry point: AWS config, secrets from SSM,
// backend construction and the startup log line.
package lambdaboot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/auth"
	"github.com/fpang/adforge/internal/campaign"
	"github.com/fpang/adforge/internal/chat"
	"github.com/fpang/adforge/internal/config"
	"github.com/fpang/adforge/internal/logging"
)

// ParameterGetter is the subset of *ssm.Client used to read secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Options tunes Boot.
type Options struct {
	// ValidateGeminiKey makes one test request with the Gemini key at start.
	ValidateGeminiKey bool
}

// Runtime is everything a request path needs, built once per process.
type Runtime struct {
	Config  config.Config
	Gateway *chat.Gateway
	Service *campaign.Service
}

// LoadAWSConfig loads the SDK config for the configured region. Static
// credentials replace the default chain when present.
func LoadAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug().
		Str("region", awsCfg.Region).
		Bool("static_credentials", cfg.HasStaticCredentials()).
		Msg("AWS config loaded")
	return awsCfg, nil
}

// needsSSM reports whether any secret must come from Parameter Store.
func needsSSM(cfg config.Config) bool {
	geminiKey := cfg.Backend == chat.BackendGemini && cfg.GeminiAPIKey == "" && cfg.GeminiAPIKeyParam != ""
	origin := cfg.OriginVerifySecret == "" && cfg.OriginVerifyParam != ""
	return geminiKey || origin
}

// LoadSecrets fills the Gemini API key and the origin-verify secret from SSM
// when they are not set directly but a parameter name is configured.
func LoadSecrets(ctx context.Context, params ParameterGetter, cfg *config.Config) error {
	if cfg.Backend == chat.BackendGemini && cfg.GeminiAPIKey == "" && cfg.GeminiAPIKeyParam != "" {
		key, err := fetchParameter(ctx, params, cfg.GeminiAPIKeyParam)
		if err != nil {
			return err
		}
		cfg.GeminiAPIKey = key
	}
	if cfg.OriginVerifySecret == "" && cfg.OriginVerifyParam != "" {
		secret, err := fetchParameter(ctx, params, cfg.OriginVerifyParam)
		if err != nil {
			return err
		}
		cfg.OriginVerifySecret = secret
	}
	return nil
}

func fetchParameter(ctx context.Context, params ParameterGetter, name string) (string, error) {
	start := time.Now()
	result, err := params.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read SSM parameter %s: %w", name, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return "", fmt.Errorf("SSM parameter %s is empty", name)
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Secret loaded from SSM")
	return aws.ToString(result.Parameter.Value), nil
}

// NewBackend constructs the model backend selected by cfg.Backend.
func NewBackend(ctx context.Context, cfg config.Config, awsCfg aws.Config, opts Options) (chat.Backend, error) {
	switch cfg.Backend {
	case chat.BackendBedrock:
		client := bedrockruntime.NewFromConfig(awsCfg)
		return chat.NewBedrockBackend(client, cfg.TextModelID(), cfg.ImageModelID()), nil

	case chat.BackendGemini:
		key, err := auth.GeminiAPIKey(cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		client, err := chat.NewGeminiClient(ctx, key)
		if err != nil {
			return nil, err
		}
		if opts.ValidateGeminiKey {
			if err := auth.ValidateGeminiKey(ctx, client.Models, cfg.TextModelID()); err != nil {
				return nil, err
			}
		}
		return chat.NewGeminiBackend(client.Models, cfg.TextModelID(), cfg.ImageModelID()), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Boot resolves secrets, builds the backend and wires the campaign service.
func Boot(ctx context.Context, cfg config.Config, opts Options) (*Runtime, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if needsSSM(cfg) {
		if err := LoadSecrets(ctx, ssm.NewFromConfig(awsCfg), &cfg); err != nil {
			return nil, err
		}
	}

	backend, err := NewBackend(ctx, cfg, awsCfg, opts)
	if err != nil {
		return nil, err
	}
	gateway := chat.NewGateway(backend)
	return &Runtime{
		Config:  cfg,
		Gateway: gateway,
		Service: campaign.NewService(gateway),
	}, nil
}

// StartupLog prepares the startup log line for a booted runtime.
func StartupLog(name string, initStart time.Time, rt *Runtime) *logging.StartupLogger {
	cfg := rt.Config
	sl := logging.NewStartupLogger(name).
		InitDuration(time.Since(initStart)).
		Config("backend", cfg.Backend).
		Model("text", cfg.TextModelID()).
		Model("image", cfg.ImageModelID()).
		Feature("originVerify", cfg.OriginVerifySecret != "").
		Feature("staticCredentials", cfg.HasStaticCredentials())
	if cfg.Backend == chat.BackendBedrock {
		sl.Config("region", cfg.Region)
	}
	if cfg.GeminiAPIKeyParam != "" {
		sl.SSMParam("geminiApiKey", cfg.GeminiAPIKeyParam)
	}
	if cfg.OriginVerifyParam != "" {
		sl.SSMParam("originVerify", cfg.OriginVerifyParam)
	}
	return sl
}
