package lambdaboot

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/adforge/internal/chat"
	"github.com/fpang/adforge/internal/config"
)

type fakeSSM struct {
	values map[string]string
	err    error

	requested []string
	decrypted []bool
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(in.Name)
	f.requested = append(f.requested, name)
	f.decrypted = append(f.decrypted, aws.ToBool(in.WithDecryption))
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[name]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(v)}}, nil
}

func TestLoadSecrets_FromSSM(t *testing.T) {
	params := &fakeSSM{values: map[string]string{
		"/adforge/gemini-key": "gk",
		"/adforge/origin":     "ov",
	}}
	cfg := config.Config{
		Backend:           chat.BackendGemini,
		GeminiAPIKeyParam: "/adforge/gemini-key",
		OriginVerifyParam: "/adforge/origin",
	}
	if !needsSSM(cfg) {
		t.Fatal("needsSSM() = false, want true")
	}

	if err := LoadSecrets(context.Background(), params, &cfg); err != nil {
		t.Fatalf("LoadSecrets() error = %v", err)
	}
	if cfg.GeminiAPIKey != "gk" || cfg.OriginVerifySecret != "ov" {
		t.Errorf("cfg = %+v", cfg)
	}
	for i, d := range params.decrypted {
		if !d {
			t.Errorf("parameter %s read without decryption", params.requested[i])
		}
	}
}

func TestLoadSecrets_ExplicitValuesWin(t *testing.T) {
	params := &fakeSSM{}
	cfg := config.Config{
		Backend:            chat.BackendGemini,
		GeminiAPIKey:       "env-key",
		GeminiAPIKeyParam:  "/adforge/gemini-key",
		OriginVerifySecret: "env-secret",
		OriginVerifyParam:  "/adforge/origin",
	}
	if needsSSM(cfg) {
		t.Error("needsSSM() = true with explicit values")
	}
	if err := LoadSecrets(context.Background(), params, &cfg); err != nil {
		t.Fatal(err)
	}
	if len(params.requested) != 0 {
		t.Errorf("unexpected SSM reads: %v", params.requested)
	}
}

func TestLoadSecrets_BedrockSkipsGeminiKey(t *testing.T) {
	params := &fakeSSM{}
	cfg := config.Config{Backend: chat.BackendBedrock, GeminiAPIKeyParam: "/adforge/gemini-key"}
	if err := LoadSecrets(context.Background(), params, &cfg); err != nil {
		t.Fatal(err)
	}
	if len(params.requested) != 0 {
		t.Errorf("Bedrock backend should not read the Gemini key, got %v", params.requested)
	}
}

func TestLoadSecrets_Error(t *testing.T) {
	boom := errors.New("AccessDeniedException")
	cfg := config.Config{OriginVerifyParam: "/adforge/origin"}
	err := LoadSecrets(context.Background(), &fakeSSM{err: boom}, &cfg)
	if !errors.Is(err, boom) {
		t.Errorf("LoadSecrets() error = %v, want wrapped %v", err, boom)
	}
}

func TestLoadSecrets_EmptyValue(t *testing.T) {
	cfg := config.Config{OriginVerifyParam: "/adforge/origin"}
	params := &fakeSSM{values: map[string]string{"/adforge/origin": ""}}
	if err := LoadSecrets(context.Background(), params, &cfg); err == nil {
		t.Error("expected an error for an empty parameter")
	}
}

func TestNewBackend_Bedrock(t *testing.T) {
	cfg := config.Config{Backend: chat.BackendBedrock, Region: "us-east-1"}
	backend, err := NewBackend(context.Background(), cfg, aws.Config{Region: "us-east-1"}, Options{})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if backend.Name() != chat.BackendBedrock {
		t.Errorf("Name() = %q", backend.Name())
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	if _, err := NewBackend(context.Background(), config.Config{Backend: "openai"}, aws.Config{}, Options{}); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
