package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Morwran/yagpt"
)

var errEmptyCompletion = errors.New("empty response")

// yandexCompletion is one YandexGPT call reduced to the fields the oracle reads.
type yandexCompletion func(ctx context.Context, msgs []yagpt.Message) (Response, error)

type YandexClient struct {
	complete yandexCompletion
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	token, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	iamToken := token.IamToken
	return &YandexClient{complete: func(ctx context.Context, msgs []yagpt.Message) (Response, error) {
		resp, err := ya.CompletionWithCtx(ctx, iamToken, msgs)
		if err != nil {
			return Response{}, err
		}
		if resp == nil || len(resp.Alternatives) == 0 {
			return Response{}, errEmptyCompletion
		}
		return Response{
			Content:          resp.Alternatives[0].Message.Content,
			Model:            yagpt.YaModelLite,
			PromptTokens:     int(resp.Usage.InputTextTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}, nil
	}}, nil
}

// Generate sends the conversation to YandexGPT. An empty completion is a provider error;
// anything else that fails is treated as transport.
func (c *YandexClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	yaMsgs := make([]yagpt.Message, 0, len(messages))
	for _, m := range messages {
		yaMsgs = append(yaMsgs, yagpt.Message{Role: m.Role, Content: m.Content})
	}

	out, err := c.complete(ctx, yaMsgs)
	switch {
	case errors.Is(err, errEmptyCompletion):
		return Response{}, &RemoteError{Provider: "yandex", Err: err}
	case err != nil:
		return Response{}, fmt.Errorf("yagpt completion failed: %w", err)
	}
	return out, nil
}
