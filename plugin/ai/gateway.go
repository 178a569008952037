package ai

import (
	"context"
	"io"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const (
	completeTemperature = 0.2
	completeMaxTokens   = 1000
	streamMaxTokens     = 500
)

// Gateway is the surface the agent loop depends on.
type Gateway interface {
	// Complete runs one non-streaming chat completion with the given tools
	// offered to the model.
	Complete(ctx context.Context, messages []Message, tools []ToolDescriptor) (*ChatResponse, error)
	// CompleteStream runs one streaming chat completion without tools and
	// emits content fragments on the returned channel. The error channel
	// yields exactly one value after the fragment channel closes.
	CompleteStream(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// Config carries the provider settings for NewGateway.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type openAIGateway struct {
	client *openai.Client
	model  string
}

// NewGateway builds a Gateway against an OpenAI-compatible endpoint.
func NewGateway(config Config) (Gateway, error) {
	if config.APIKey == "" {
		return nil, errors.New("api key required")
	}
	if config.Model == "" {
		return nil, errors.New("model required")
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &openAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
	}, nil
}

func (g *openAIGateway) Complete(ctx context.Context, messages []Message, tools []ToolDescriptor) (*ChatResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: completeTemperature,
		MaxTokens:   completeMaxTokens,
	}
	if len(tools) > 0 {
		request.Tools = toOpenAITools(tools)
		request.ToolChoice = "auto"
	}

	response, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, &GatewayError{Message: "chat completion failed", Cause: err}
	}
	if len(response.Choices) == 0 {
		return nil, &GatewayError{Message: "chat completion returned no choices"}
	}

	choice := response.Choices[0].Message
	result := &ChatResponse{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}

func (g *openAIGateway) CompleteStream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	tokenCh := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(tokenCh)
		defer close(errCh)

		stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    toOpenAIMessages(messages),
			Temperature: completeTemperature,
			MaxTokens:   streamMaxTokens,
			Stream:      true,
		})
		if err != nil {
			errCh <- &GatewayError{Message: "open completion stream failed", Cause: err}
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				errCh <- nil
				return
			}
			if err != nil {
				errCh <- &GatewayError{Message: "read completion stream failed", Cause: err}
				return
			}
			if len(response.Choices) == 0 {
				continue
			}
			if delta := response.Choices[0].Delta.Content; delta != "" {
				select {
				case tokenCh <- delta:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}
	}()

	return tokenCh, errCh
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []ToolDescriptor) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
