package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Ensure OpenAIProvider implements model.ModelGateway.
var _ model.ModelGateway = (*OpenAIProvider)(nil)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4"
	// DefaultTemperature keeps answers creative but coherent.
	DefaultTemperature = 0.7
)

// OpenAIProvider calls the OpenAI /v1/chat/completions endpoint in streaming mode.
type OpenAIProvider struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIProvider creates a provider targeting the OpenAI API.
func NewOpenAIProvider(baseURL, apiKey, modelName string, temperature float64, httpClient *http.Client) *OpenAIProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &OpenAIProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       modelName,
		temperature: temperature,
		httpClient:  httpClient,
	}
}

// Model returns the model identifier sent with every request.
func (p *OpenAIProvider) Model() string { return p.model }

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []chatMessage  `json:"messages"`
	Temperature   float64        `json:"temperature"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chatChunk is one server-sent event of a streamed completion.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type errorBody struct {
	Error *apiError `json:"error"`
}

func toChatMessages(history []model.Message) []chatMessage {
	out := make([]chatMessage, 0, len(history))
	for _, m := range history {
		role := string(m.Role)
		if m.Role == model.RoleHuman {
			role = "user"
		}
		out = append(out, chatMessage{Role: role, Content: m.Content})
	}
	return out
}

// Complete sends the full history and streams the reply. onToken, when set,
// sees every token in arrival order before Complete returns.
func (p *OpenAIProvider) Complete(ctx context.Context, history []model.Message, onToken model.TokenObserver) (model.Completion, error) {
	if p.apiKey == "" {
		return model.Completion{}, &model.ConfigurationError{Field: "ai.api_key", Err: model.ErrMissingCredential}
	}
	if len(history) == 0 {
		return model.Completion{}, fmt.Errorf("complete: empty message history")
	}

	reqBody := chatRequest{
		Model:         p.model,
		Messages:      toChatMessages(history),
		Temperature:   p.temperature,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return model.Completion{}, fmt.Errorf("marshal llm request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.Completion{}, fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.Completion{}, transient(fmt.Errorf("llm request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return model.Completion{}, transient(&model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(respBytes)),
		})
	}

	completion, err := readStream(resp.Body, onToken)
	if err != nil {
		return model.Completion{}, transient(err)
	}
	return completion, nil
}

func transient(err error) error {
	return &model.TransientServiceError{Op: "chat completion", Err: err}
}

// errorMessage extracts the API error message from a non-200 body, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != nil && eb.Error.Message != "" {
		if eb.Error.Type != "" {
			return fmt.Sprintf("%s (%s)", eb.Error.Message, eb.Error.Type)
		}
		return eb.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// readStream consumes "data: ..." events until "data: [DONE]".
func readStream(r io.Reader, onToken model.TokenObserver) (model.Completion, error) {
	var (
		text  strings.Builder
		usage model.Usage
		done  bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue // blank separators, comments, event: lines
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			done = true
			break
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return model.Completion{}, fmt.Errorf("parse stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return model.Completion{}, fmt.Errorf("llm error (%s): %s", chunk.Error.Type, chunk.Error.Message)
		}
		if chunk.Usage != nil {
			usage = model.Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
			}
		}
		for _, choice := range chunk.Choices {
			token := choice.Delta.Content
			if token == "" {
				continue
			}
			text.WriteString(token)
			if onToken != nil {
				onToken(token)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return model.Completion{}, fmt.Errorf("read stream: %w", err)
	}
	if !done {
		return model.Completion{}, fmt.Errorf("stream ended before [DONE]")
	}
	if text.Len() == 0 {
		return model.Completion{}, fmt.Errorf("llm returned no content")
	}

	return model.Completion{Text: text.String(), Usage: usage}, nil
}
