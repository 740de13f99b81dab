package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider implements Provider with the Bedrock Converse API.
type BedrockProvider struct {
	api     converseAPI
	modelID string
}

func NewBedrockProvider(api converseAPI, modelID string) (*BedrockProvider, error) {
	if api == nil {
		return nil, errors.New("llm: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("llm: bedrock model id is required")
	}
	return &BedrockProvider{api: api, modelID: modelID}, nil
}

func (p *BedrockProvider) Name() string  { return "bedrock" }
func (p *BedrockProvider) Model() string { return p.modelID }

func (p *BedrockProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var system []brtypes.SystemContentBlock
	if strings.TrimSpace(prompt.System) != "" {
		system = append(system, &brtypes.SystemContentBlockMemberText{Value: prompt.System})
	}

	inference := &brtypes.InferenceConfiguration{
		Temperature: aws.Float32(prompt.Temperature),
	}
	if prompt.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(prompt.MaxTokens)
	}

	out, err := p.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		System:  system,
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt.User}},
		}},
		InferenceConfig: inference,
	})
	if err != nil {
		return "", fmt.Errorf("llm: bedrock converse: %w", err)
	}
	text, err := bedrockOutputText(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("llm: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("llm: bedrock response did not include a message output")
	}

	var builder strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			builder.WriteString(textBlock.Value)
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", errors.New("llm: bedrock response contained no text content blocks")
	}
	return builder.String(), nil
}
