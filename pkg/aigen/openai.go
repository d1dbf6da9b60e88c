package aigen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/internal/domain"
)

// ErrUnconfigured means no API key is present. It is an expected outcome,
// not a failure: the composer falls back to the template silently.
var ErrUnconfigured = errors.New("reply generator not configured")

// Generator produces reply bodies with an OpenAI chat completion.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func New(cfg environments.AIConfig) *Generator {
	g := &Generator{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
	if cfg.APIKey != "" {
		g.client = openai.NewClient(cfg.APIKey)
	}
	return g
}

func (g *Generator) Generate(
	ctx context.Context,
	job *domain.Job,
	settings domain.Settings,
	matched *domain.Rule,
) (string, error) {
	if g.client == nil {
		return "", ErrUnconfigured
	}

	maxSentences := settings.MaxSentences
	if maxSentences <= 0 {
		maxSentences = 2
	}
	tone := settings.Tone
	if tone == "" {
		tone = domain.DefaultSettings().Tone
	}

	systemLines := []string{
		"You are a front desk email replier for a small business.",
		"Your goal is to reply to incoming website form submissions quickly and helpfully.",
		fmt.Sprintf("Tone: %s.", tone),
		fmt.Sprintf("Limit yourself to %d sentences.", maxSentences),
		"Keep it sounding human.",
	}
	if settings.SystemInstructions != "" {
		systemLines = append(systemLines, "Business-specific guidance: "+settings.SystemInstructions)
	}
	if matched != nil && matched.Instructions != "" {
		systemLines = append(systemLines, "IMPORTANT domain rule to apply: "+matched.Instructions)
	}

	userLines := []string{
		"Compose a brief reply email to the following sender based on their message. Respond as the business.",
		"Name: " + job.SenderName(),
		"Email: " + job.SenderEmail(),
		"Subject: " + job.Subject(),
		"Message: " + job.Message(),
	}
	if formName := job.FormField("formName"); formName != "" {
		userLines = append(userLines, "Form: "+formName)
	}
	if pageURL := job.FormField("pageUrl"); pageURL != "" {
		userLines = append(userLines, "Page: "+pageURL)
	}
	userLines = append(userLines, "", "Return ONLY the email body text (no subject line, no markdown fences).")

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.6,
		MaxTokens:   g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: strings.Join(systemLines, "\n")},
			{Role: openai.ChatMessageRoleUser, Content: strings.Join(userLines, "\n")},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
