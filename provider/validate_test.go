package provider

import (
	"context"
	"testing"

	"cutui/model"
)

func TestValidateAuth_Anthropic(t *testing.T) {
	ctx := context.Background()

	if reason := ValidateAuth(ctx, model.ProviderAnthropic, ""); reason == "" {
		t.Error("empty key accepted")
	}
	if reason := ValidateAuth(ctx, model.ProviderAnthropic, model.PlaceholderAPIKey); reason == "" {
		t.Error("placeholder key accepted")
	}
	if reason := ValidateAuth(ctx, model.ProviderAnthropic, "sk-real-key"); reason != "" {
		t.Errorf("real-looking key rejected: %s", reason)
	}
}

func TestValidateAuth_VertexNeedsRegion(t *testing.T) {
	t.Setenv("CLOUD_ML_REGION", "")

	reason := ValidateAuth(context.Background(), model.ProviderVertex, "")
	if reason != "Set the CLOUD_ML_REGION environment variable to use the Vertex API." {
		t.Errorf("reason = %q", reason)
	}
}

func TestValidateAuth_UnknownProvider(t *testing.T) {
	if reason := ValidateAuth(context.Background(), model.Provider("openai"), "sk-x"); reason == "" {
		t.Error("unknown provider accepted")
	}
}
