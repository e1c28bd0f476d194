package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"portfolio-analyzer/config"
	"portfolio-analyzer/internal/dto"
	"portfolio-analyzer/internal/faults"
	"portfolio-analyzer/pkg/httpclient"
	"portfolio-analyzer/pkg/logger"
	"portfolio-analyzer/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// AIRepository is the single outbound capability of the service: give the
// model an ordered list of text and image parts plus a generation config,
// get text back or a classified fault.
type AIRepository interface {
	GenerateContent(ctx context.Context, req dto.GenerateRequest) (string, error)
}

// geminiAIRepository calls the Gemini generateContent REST endpoint with
// bounded retries and exponential backoff.
type geminiAIRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
	backoffBase    time.Duration
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		httpClient:     httpclient.New(cfg.Gemini.BaseURL, cfg.Gemini.Timeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
		backoffBase:    time.Second,
	}, nil
}

func (r *geminiAIRepository) GenerateContent(ctx context.Context, req dto.GenerateRequest) (string, error) {
	if err := r.waitForBudget(ctx, req.Prompt); err != nil {
		return "", fmt.Errorf("failed to wait for gemini rate limits: %w", err)
	}

	payload := r.buildPayload(req)
	apiURL := fmt.Sprintf("/%s:generateContent?key=%s", r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)

	maxRetries := r.cfg.Gemini.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleepBackoff(ctx, attempt); err != nil {
				return "", err
			}
		}

		r.logger.DebugContext(ctx, "calling gemini",
			logger.IntField("attempt", attempt+1),
			logger.IntField("max_attempts", maxRetries),
			logger.IntField("images", len(req.Images)),
		)

		text, err := r.sendRequest(ctx, apiURL, payload)
		if err == nil {
			return text, nil
		}

		switch faults.KindOf(err) {
		case faults.KindQuotaExceeded, faults.KindBadRequest:
			// Terminal upstream rejections, retrying cannot help.
			return "", err
		case faults.KindTimeout:
			r.logger.WarnContext(ctx, "gemini call timed out", logger.IntField("attempt", attempt+1))
		case faults.KindEmptyResponse:
			r.logger.WarnContext(ctx, "gemini returned empty response", logger.IntField("attempt", attempt+1))
		default:
			// A failing search tool degrades grounding quality but is not
			// fatal, the next attempt may succeed without it.
			if strings.Contains(strings.ToLower(err.Error()), "search") {
				r.logger.WarnContext(ctx, "search tool failure, retrying base analysis", logger.ErrorField(err))
			} else {
				r.logger.ErrorContext(ctx, "gemini call failed", logger.IntField("attempt", attempt+1), logger.ErrorField(err))
			}
		}
		lastErr = err
	}

	return "", lastErr
}

// waitForBudget applies the request-per-minute and token-per-minute
// limits before a call goes out.
func (r *geminiAIRepository) waitForBudget(ctx context.Context, promptText string) error {
	if r.genAiClient != nil && r.cfg.Gemini.MaxTokenPerMinute > 0 {
		contents := []*genai.Content{genai.NewContentFromText(promptText, "user")}
		tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
		if err != nil {
			// Counting is advisory, the request limiter still applies.
			r.logger.WarnContext(ctx, "failed to count tokens", logger.ErrorField(err))
		} else {
			r.logger.Debug("gemini token count",
				logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
				logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
			)
			if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
				return err
			}
		}
	}

	if r.requestLimiter != nil {
		return r.requestLimiter.Wait(ctx)
	}
	return nil
}

func (r *geminiAIRepository) buildPayload(req dto.GenerateRequest) dto.GeminiAPIRequest {
	parts := make([]dto.Part, 0, len(req.Images)+1)
	parts = append(parts, dto.Part{Text: req.Prompt})
	for _, img := range req.Images {
		parts = append(parts, dto.Part{
			InlineData: &dto.InlineData{
				MIMEType: img.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	temp := req.Temperature
	genCfg := &dto.GenerationConfig{
		Temperature:      &temp,
		MaxOutputTokens:  req.MaxOutputTokens,
		ResponseMIMEType: req.ResponseMIMEType,
	}
	if temp > 0 {
		genCfg.TopP = 0.9
		genCfg.TopK = 40
	}

	payload := dto.GeminiAPIRequest{
		Contents:         []dto.Content{{Role: "user", Parts: parts}},
		GenerationConfig: genCfg,
	}
	if req.EnableSearch {
		payload.Tools = []dto.Tool{{GoogleSearch: &dto.GoogleSearch{}}}
	}
	return payload
}

// sendRequest performs one attempt and classifies its outcome.
func (r *geminiAIRepository) sendRequest(ctx context.Context, apiURL string, payload dto.GeminiAPIRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.Gemini.Timeout)
	defer cancel()

	apiResponse := dto.GeminiAPIResponse{}
	resp, err := r.httpClient.Post(attemptCtx, apiURL, payload, nil, &apiResponse)
	if err != nil {
		if isTimeout(err) {
			return "", faults.Wrap(faults.KindTimeout,
				fmt.Sprintf("analysis timed out after %s", r.cfg.Gemini.Timeout), err)
		}
		return "", fmt.Errorf("failed to send request to gemini: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, apiResponse.Error)
	}

	text := strings.TrimSpace(apiResponse.Text())
	if text == "" {
		return "", faults.New(faults.KindEmptyResponse, "model returned an empty response")
	}
	return text, nil
}

// classifyAPIError maps the API's structured error codes first and falls
// back to substring matching on the message. The fallback is best-effort
// only, upstream wording is not a stable contract.
func classifyAPIError(statusCode int, apiErr *dto.GeminiAPIError) error {
	status := ""
	message := ""
	if apiErr != nil {
		status = apiErr.Status
		message = strings.ToLower(apiErr.Message)
	}

	switch {
	case statusCode == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return faults.New(faults.KindQuotaExceeded, "model quota exhausted, please retry later")
	case statusCode == http.StatusBadRequest || status == "INVALID_ARGUMENT":
		return faults.New(faults.KindBadRequest, "model rejected the request")
	case strings.Contains(message, "quota") || strings.Contains(message, "rate limit"):
		return faults.New(faults.KindQuotaExceeded, "model quota exhausted, please retry later")
	case strings.Contains(message, "invalid"):
		return faults.New(faults.KindBadRequest, "model rejected the request")
	default:
		return fmt.Errorf("gemini returned status %d: %s", statusCode, message)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (r *geminiAIRepository) sleepBackoff(ctx context.Context, attempt int) error {
	base := r.backoffBase
	if base <= 0 {
		base = time.Second
	}
	delay := base * time.Duration(1<<(attempt-1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
