// Package llm wraps an external text generator used to phrase replies and,
// as a last resort, to classify yes/no answers. Every call is bounded by a
// timeout and a concurrency pool; callers keep a local fallback.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logging "github.com/op/go-logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/iliamunaev/coffee-sms/internal/match"
	"github.com/iliamunaev/coffee-sms/internal/service/pool"
	"github.com/iliamunaev/coffee-sms/internal/service/tracker"
)

var log = logging.MustGetLogger("llm")

// ErrEmpty is returned when the generator answers with blank text.
var ErrEmpty = errors.New("llm: empty completion")

// Config selects an OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client calls the generator.
type Client struct {
	model   llms.Model
	pool    *pool.Pool
	tr      *tracker.Tracker
	timeout time.Duration
}

// New wraps model. It panics on a nil model or pool.
func New(model llms.Model, p *pool.Pool, tr *tracker.Tracker, timeout time.Duration) *Client {
	if model == nil {
		panic("llm.New: nil model")
	}
	if p == nil {
		panic("llm.New: nil pool")
	}
	if tr == nil {
		tr = &tracker.Tracker{}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{model: model, pool: p, tr: tr, timeout: timeout}
}

// NewOpenAI builds a Client backed by langchaingo's OpenAI driver.
func NewOpenAI(cfg Config, p *pool.Pool, tr *tracker.Tracker, timeout time.Duration) (*Client, error) {
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: openai client: %w", err)
	}
	return New(m, p, tr, timeout), nil
}

func (c *Client) generate(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer c.tr.Track()()

	var out string
	err := c.pool.Do(ctx, func(ctx context.Context) error {
		text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, opts...)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(text)
		return nil
	})
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", ErrEmpty
	}
	return out, nil
}

// Phrase asks the generator to word a reply.
func (c *Client) Phrase(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt, llms.WithMaxTokens(150), llms.WithTemperature(0.7))
	if err != nil {
		log.Warningf("phrase fallback: %v", err)
		return "", err
	}
	return strings.Trim(text, "\"'"), nil
}

// Classify asks whether answer means yes or no to question.
// Anything but a clear YES or NO is Unknown.
func (c *Client) Classify(ctx context.Context, question, answer string) (match.Answer, error) {
	text, err := c.generate(ctx, ClassifyPrompt(question, answer), llms.WithMaxTokens(5), llms.WithTemperature(0))
	if err != nil {
		log.Warningf("classify fallback: %v", err)
		return match.Unknown, err
	}
	return ParseAnswer(text), nil
}

// ClassifyPrompt builds the yes/no classification prompt.
func ClassifyPrompt(question, answer string) string {
	return fmt.Sprintf("A coffee shop customer was asked: %q\n"+
		"They replied: %q\n"+
		"Does the reply mean yes or no? Answer with exactly one word: YES, NO or UNSURE.", question, answer)
}

// ParseAnswer reads the first word of a classification completion.
func ParseAnswer(text string) match.Answer {
	fields := strings.Fields(strings.ToUpper(text))
	if len(fields) == 0 {
		return match.Unknown
	}
	switch strings.Trim(fields[0], ".!,\"'") {
	case "YES":
		return match.Yes
	case "NO":
		return match.No
	}
	return match.Unknown
}
