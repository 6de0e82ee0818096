package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/voyora/tripweaver/internal/infra/llm/chatgpt"
	apperrors "github.com/voyora/tripweaver/pkg/errors"
	"github.com/voyora/tripweaver/pkg/metrics"
)

// ChatClient is the oracle round trip.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Config wires runtime knobs for the advisor.
type Config struct {
	Model       string
	Temperature float32
	Prompt      string
	CallCap     int
	CallTimeout time.Duration
	CacheTTL    time.Duration
}

// Factory builds one Session per trip generation so each trip gets its own
// oracle call budget.
type Factory struct {
	cfg      Config
	client   ChatClient
	store    Store
	logger   *slog.Logger
	encoding *tiktoken.Tiktoken
}

// NewFactory wires the advisor. A nil client disables the oracle entirely:
// sessions then answer from the fallback rules alone.
func NewFactory(cfg Config, client ChatClient, store Store, logger *slog.Logger) *Factory {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, token estimates disabled", "error", err)
		encoding = nil
	}
	return &Factory{
		cfg:      cfg,
		client:   client,
		store:    store,
		logger:   logger.With("component", "advisor"),
		encoding: encoding,
	}
}

// NewSession starts a fresh call budget.
func (f *Factory) NewSession() Session {
	return &session{
		cfg:      f.cfg,
		client:   f.client,
		store:    f.store,
		logger:   f.logger,
		encoding: f.encoding,
	}
}

type session struct {
	cfg      Config
	client   ChatClient
	store    Store
	logger   *slog.Logger
	encoding *tiktoken.Tiktoken
	fallback Fallback

	mu    sync.Mutex
	usage metrics.OracleUsage
}

// Decide resolves one ambiguous question. Resolution order: cache, oracle
// (if configured and the call budget allows), deterministic fallback. Any
// oracle failure, including timeout, falls through to the fallback so trip
// generation never stalls on the advisor.
func (s *session) Decide(ctx context.Context, req Request) (Response, error) {
	if len(req.Options) == 0 {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "advisor request has no options", nil)
	}

	key := cacheKey(req)
	if s.store != nil {
		if cached, ok, err := s.store.Get(ctx, key); err == nil && ok && offered(req, cached.OptionID) {
			cached.Source = "cache"
			return cached, nil
		}
	}

	if res, ok := s.askOracle(ctx, req, key); ok {
		return res, nil
	}

	return s.fallback.Decide(req), nil
}

func (s *session) Enabled() bool {
	return s.client != nil
}

func (s *session) Usage() metrics.OracleUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

func (s *session) askOracle(ctx context.Context, req Request, key string) (Response, bool) {
	if s.client == nil {
		return Response{}, false
	}
	s.mu.Lock()
	if s.usage.Calls >= s.cfg.CallCap {
		s.mu.Unlock()
		return Response{}, false
	}
	s.mu.Unlock()

	timeout := s.cfg.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	system := s.systemPrompt()
	user := buildQuestionPrompt(req)

	completion, err := s.client.CreateChatCompletion(callCtx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	s.recordCall(completion, system+user)
	if err != nil {
		s.logger.Warn("oracle call failed, using fallback", "kind", req.Kind, "error", err)
		return Response{}, false
	}
	if len(completion.Choices) == 0 {
		s.logger.Warn("oracle returned no choices, using fallback", "kind", req.Kind)
		return Response{}, false
	}

	res, err := parseDecision(completion.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("oracle response malformed, using fallback", "kind", req.Kind, "error", err)
		return Response{}, false
	}
	if !offered(req, res.OptionID) {
		s.logger.Warn("oracle chose an unoffered option, using fallback", "kind", req.Kind, "option", res.OptionID)
		return Response{}, false
	}
	res.Source = "oracle"

	if s.store != nil {
		if err := s.store.Save(ctx, key, res, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("decision cache save failed", "error", err)
		}
	}
	return res, true
}

func (s *session) recordCall(completion chatgpt.ChatCompletionResponse, prompt string) {
	tokens := metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}
	if tokens.IsZero() && s.encoding != nil {
		estimated := len(s.encoding.Encode(prompt, nil, nil))
		tokens = metrics.TokenUsage{PromptTokens: estimated, TotalTokens: estimated}
	}
	s.mu.Lock()
	s.usage.Record(tokens)
	s.mu.Unlock()
}

func (s *session) systemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "You are a pragmatic travel planner resolving one scheduling decision."
	}
	enforcer := " Respond ONLY with valid minified JSON using this shape: {\"optionId\":string,\"rationale\":string,\"confidence\":number}. optionId must be exactly one of the offered ids. Never return plain text or other fields."
	return base + enforcer
}

func buildQuestionPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question kind: %s\nSituation: %s\n", req.Kind, req.Summary)
	fmt.Fprintf(&b, "Time of day: %s, energy: %s, minutes available: %d\n", timeBucket(req.TimeOfDay), req.Energy, req.AvailableMinutes)
	if len(req.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(req.Constraints, "; "))
	}
	b.WriteString("Options:\n")
	for _, opt := range req.Options {
		fmt.Fprintf(&b, "- id=%s label=%q category=%s duration=%dmin\n", opt.ID, opt.Label, opt.Category, opt.DurationMinutes)
	}
	return b.String()
}

func parseDecision(raw string) (Response, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var res Response
	if err := json.Unmarshal([]byte(sanitized), &res); err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(res.OptionID) == "" {
		return Response{}, errors.New("optionId missing")
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		res.Confidence = 0.5
	}
	return res, nil
}

func cacheKey(req Request) string {
	energy := req.Energy
	if energy == "" {
		energy = "fresh"
	}
	return fmt.Sprintf("%s:%s:%s", req.Kind, timeBucket(req.TimeOfDay), energy)
}
