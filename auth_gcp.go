package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// geminiConfig locates the Vertex AI model used to suggest themes.
type geminiConfig struct {
	ProjectID string
	Region    string
	Model     string
}

// geminiConfigFromEnv reads GCP_PROJECT_ID, GCP_REGION and GEMINI_MODEL.
// ok is false without a project, in which case theme generation stays off.
func geminiConfigFromEnv() (cfg geminiConfig, ok bool) {
	cfg = geminiConfig{
		ProjectID: os.Getenv("GCP_PROJECT_ID"),
		Region:    envOr("GCP_REGION", defaultRegion),
		Model:     envOr("GEMINI_MODEL", defaultModel),
	}
	return cfg, cfg.ProjectID != ""
}

// GeminiClient suggests themed word lists through Vertex AI.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient authenticates with Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
func NewGeminiClient(ctx context.Context, cfg geminiConfig) (*GeminiClient, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("gemini: no GCP project configured")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client for %s/%s: %w", cfg.ProjectID, cfg.Region, err)
	}
	return &GeminiClient{client: client, modelName: cfg.Model}, nil
}

// Close is a no-op; genai clients hold no resources to release.
func (g *GeminiClient) Close() error {
	return nil
}
