package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const anthropicVersion = "bedrock-2023-05-31"

// invokeModelAPI - часть клиента bedrockruntime, которую использует BedrockOracle
type invokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockOracle реализует service.ExtractionOracle поверх AWS Bedrock.
// Вызов синхронный, без ретраев: дедлайн ограничен только контекстом запроса.
type BedrockOracle struct {
	client  invokeModelAPI
	modelID string
}

// анатомия тела запроса/ответа anthropic messages
type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewBedrockOracle создает клиент Bedrock со стандартной цепочкой AWS-кредов
func NewBedrockOracle(ctx context.Context, region, modelID string) (*BedrockOracle, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockOracle{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
	}, nil
}

// Complete отправляет промпт модели и возвращает сгенерированный текст
// из первого блока content ответа, уже без транспортного конверта.
func (o *BedrockOracle) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        1000,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal model request: %w", err)
	}

	out, err := o.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(o.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke model %s: %w", o.modelID, err)
	}

	var resp messagesResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal model response envelope: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("model response envelope has no content blocks")
	}

	return resp.Content[0].Text, nil
}
