// Package llm defines the provider abstraction used by the insight
// report generator.
package llm

import "context"

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req Request) (*Response, error)
}

// Request holds the prompt and generation parameters.
type Request struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Response holds the completion and token accounting.
type Response struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
