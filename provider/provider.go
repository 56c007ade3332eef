// Package provider builds Anthropic API clients for the supported
// surfaces (direct API, AWS Bedrock, Google Vertex) and handles all
// type conversions between the conversation core's provider-agnostic
// blocks and the SDK's wire types. The rest of the application never
// touches SDK types directly except through the agent loop.
package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"

	"cutui/model"
)

// NewClient constructs a Messages API client for the given provider.
// Bedrock and Vertex resolve their credentials from the standard cloud
// credential chains; only the direct API needs the key argument.
func NewClient(ctx context.Context, p model.Provider, apiKey string) (*anthropic.Client, error) {
	switch p {
	case model.ProviderAnthropic:
		if apiKey == "" || apiKey == model.PlaceholderAPIKey {
			return nil, fmt.Errorf("Anthropic API key is required")
		}
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		return &client, nil

	case model.ProviderBedrock:
		client := anthropic.NewClient(bedrock.WithLoadDefaultConfig(ctx))
		return &client, nil

	case model.ProviderVertex:
		region := os.Getenv("CLOUD_ML_REGION")
		project := os.Getenv("ANTHROPIC_VERTEX_PROJECT_ID")
		if region == "" || project == "" {
			return nil, fmt.Errorf("CLOUD_ML_REGION and ANTHROPIC_VERTEX_PROJECT_ID must be set for Vertex")
		}
		client := anthropic.NewClient(vertex.WithGoogleAuth(ctx, region, project))
		return &client, nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", p)
	}
}
