// Package ai implementa el puerto ChatLLM sobre las APIs REST de Anthropic y Gemini.
package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/pkg/config"
)

const (
	defaultMaxTokens = 1024
	maxResponseBytes = 256 * 1024
	httpTimeout      = 25 * time.Second
)

// newHTTPClient cliente con reintentos para 429/5xx y errores de red.
// El use case impone además un context.WithTimeout por llamada.
func newHTTPClient(retryMax int) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.HTTPClient.Timeout = httpTimeout
	rc.Logger = nil
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	// tras agotar reintentos devolvemos la última respuesta para leer el error del proveedor
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc.StandardClient()
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}
	return b, nil
}

// New construye el proveedor configurado. Sin API key devuelve nil (chat IA deshabilitado, 503).
func New(cfg config.AIConfig) (ports.ChatLLM, error) {
	switch cfg.Provider {
	case "", "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.RetryMax), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RetryMax), nil
	}
	return nil, fmt.Errorf("AI: proveedor desconocido %q", cfg.Provider)
}
