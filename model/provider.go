package model

// Provider identifies which API surface serves the Claude models. The
// type lives in the model package (not provider) so that session state
// can reference it without importing SDK-facing code, mirroring how
// the provider package depends on model for conversions.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
	ProviderVertex    Provider = "vertex"
)

// Providers lists the supported providers in display order.
func Providers() []Provider {
	return []Provider{ProviderAnthropic, ProviderBedrock, ProviderVertex}
}

// ParseProvider maps a configuration string to a known provider.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderAnthropic, ProviderBedrock, ProviderVertex:
		return Provider(s), true
	}
	return "", false
}

// DefaultModel returns the default Claude model for a provider. Each
// surface names the same model generation differently.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderBedrock:
		return "anthropic.claude-3-5-sonnet-20241022-v2:0"
	case ProviderVertex:
		return "claude-3-5-sonnet-v2@20241022"
	default:
		return "claude-3-5-sonnet-20241022"
	}
}
