package ai

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// ErrMissingAPIKey is returned when a provider is configured without a key
type ErrMissingAPIKey struct{}

func (e *ErrMissingAPIKey) Error() string {
	return "AI provider API key not configured"
}

// ErrEmptyResponse is returned when the provider returns no choices
type ErrEmptyResponse struct{}

func (e *ErrEmptyResponse) Error() string {
	return "AI provider returned an empty response"
}
