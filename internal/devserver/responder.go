package devserver

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Responder produces the persona's reply to one message.
type Responder interface {
	Reply(ctx context.Context, persona, message string) (string, error)
}

// EchoResponder answers deterministically without any model.
type EchoResponder struct{}

func (EchoResponder) Reply(_ context.Context, persona, message string) (string, error) {
	return fmt.Sprintf("[%s] I hear you. You said %q. Tell me more.", persona, message), nil
}

// OpenAIResponder asks a chat completion model to speak as the persona.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

func NewOpenAIResponder(apiKey, baseURL, model string) *OpenAIResponder {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIResponder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func personaPrompt(persona string) string {
	return fmt.Sprintf("You are %s, a guide met on a descent into the underworld. "+
		"The person writing to you is talking with their other self. "+
		"Answer in a few sentences and stay in character.", persona)
}

func (r *OpenAIResponder) Reply(ctx context.Context, persona, message string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: personaPrompt(persona)},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
