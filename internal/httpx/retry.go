package httpx

// retry.go — Llamada HTTP reintentable compartida por todos los adapters.
//
// Cada adapter aporta su builder de request (se ejecuta por intento, de forma
// que headers firmados con timestamp/nonce se regeneran frescos) y opcionalmente
// su predicado de reintentabilidad. La política por defecto reintenta solo
// errores transitorios: transporte, 429 y 5xx.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries = 3
	defaultBaseWait   = 500 * time.Millisecond
)

// Policy define cuántos reintentos hacer, con qué backoff y para qué fallos.
type Policy struct {
	MaxRetries int
	BaseWait   time.Duration
	// Retryable decide si un fallo merece otro intento. status es 0 cuando
	// el fallo fue de transporte (err != nil).
	Retryable func(status int, err error) bool
}

// Default es la política estándar: 3 reintentos, backoff exponencial desde
// 500ms, solo errores transitorios.
func Default() Policy {
	return Policy{
		MaxRetries: defaultMaxRetries,
		BaseWait:   defaultBaseWait,
		Retryable:  Transient,
	}
}

// Transient reintenta errores de transporte, 429 y 5xx. Un 4xx es un error
// del caller o un rechazo del servidor y falla inmediatamente.
func Transient(status int, err error) bool {
	if err != nil {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

// DoJSON ejecuta la request con rate limiting y la política dada, y decodifica
// la respuesta JSON en out si out no es nil. build se llama una vez por intento.
func DoJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, p Policy, build func() (*http.Request, error), out any) error {
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		req, err := build()
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt == p.MaxRetries || !p.Retryable(0, err) {
				return fmt.Errorf("request failed after %d retries: %w", p.MaxRetries, err)
			}
			sleep(ctx, p.BaseWait, attempt)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if p.Retryable(resp.StatusCode, nil) {
			if attempt == p.MaxRetries {
				return fmt.Errorf("status %d after %d retries: %s", resp.StatusCode, p.MaxRetries, body)
			}
			slog.Warn("transient upstream error",
				"status", resp.StatusCode,
				"url", req.URL.Path,
				"attempt", attempt+1)
			sleep(ctx, p.BaseWait, attempt)
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("client error %d: %s", resp.StatusCode, body)
		}

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", p.MaxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func sleep(ctx context.Context, base time.Duration, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * base
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
