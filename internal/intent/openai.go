package intent

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

const smallTalkPrompt = "You are a friendly assistant for a clinic's appointment system. " +
	"Reply in one or two short sentences. Never diagnose or recommend medication. " +
	"Invite the patient to describe their symptoms so a suitable doctor can be suggested, " +
	"or to ask about their prescriptions."

var errEmptyCompletion = errors.New("completion returned no choices")

// ChatCompleter is the slice of *openai.Client the classifier needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClassifier keeps every intent decision in the keyword table and
// only asks the model to phrase the reply when nothing was recognised.
// Model failures and an open breaker fall back to the keyword reply.
type OpenAIClassifier struct {
	base    Classifier
	client  ChatCompleter
	cfg     config.LLMConfig
	breaker *gobreaker.CircuitBreaker[string]
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewOpenAIClassifier(base Classifier, client ChatCompleter, cfg config.LLMConfig, m *metrics.Collector, log *zap.Logger) *OpenAIClassifier {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "openai-small-talk",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})

	return &OpenAIClassifier{
		base:    base,
		client:  client,
		cfg:     cfg,
		breaker: breaker,
		metrics: m,
		log:     log,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Intent, error) {
	in, err := c.base.Classify(ctx, text)
	if err != nil || !in.Fallback {
		return in, err
	}

	reply, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, text)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		c.metrics.LLMRequestsTotal.WithLabelValues(outcome).Inc()
		c.log.Warn("small talk completion failed, using canned reply", zap.Error(err))
		return in, nil
	}

	c.metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()
	in.Response = reply
	return in, nil
}

func (c *OpenAIClassifier) complete(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: smallTalkPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
		MaxTokens:   120,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errEmptyCompletion
	}
	return reply, nil
}
