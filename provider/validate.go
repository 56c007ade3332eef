package provider

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"golang.org/x/oauth2/google"

	"cutui/model"
)

// ValidateAuth checks whether the session is ready to talk to the
// given provider. It returns "" when credentials look usable and a
// human-readable reason otherwise; any non-empty reason blocks the
// agent loop from running.
//
// Bedrock and Vertex are probed through their standard credential
// chains rather than a live API call, so validation stays cheap and
// offline-safe.
func ValidateAuth(ctx context.Context, p model.Provider, apiKey string) string {
	switch p {
	case model.ProviderAnthropic:
		if apiKey == "" || apiKey == model.PlaceholderAPIKey {
			return "Enter your Anthropic API key to continue."
		}

	case model.ProviderBedrock:
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return "You must have AWS credentials set up to use the Bedrock API."
		}
		if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
			return "You must have AWS credentials set up to use the Bedrock API."
		}

	case model.ProviderVertex:
		if os.Getenv("CLOUD_ML_REGION") == "" {
			return "Set the CLOUD_ML_REGION environment variable to use the Vertex API."
		}
		if _, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform"); err != nil {
			return "Your Google Cloud credentials are not set up correctly."
		}

	default:
		return "Select a valid API provider."
	}
	return ""
}
