package model

import "strings"

// ModelConfig holds the completion parameters sent with every request.
type ModelConfig struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int
	Streaming       bool
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:           "gpt-3.5-turbo",
		Temperature:     0.7,
		MaxOutputTokens: 100,
		Streaming:       true,
	}
}

const DefaultCredentialPrefix = "sk-"

// Credential is the provider API key a user supplies for the session.
type Credential string

// WellFormed reports whether the credential starts with prefix. It is a format
// check only; the provider is the one that accepts or rejects the key.
func (c Credential) WellFormed(prefix string) bool {
	if prefix == "" {
		prefix = DefaultCredentialPrefix
	}
	return strings.HasPrefix(string(c), prefix)
}

// String masks the secret so a Credential can be logged by accident without leaking.
func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return "[REDACTED]"
}
