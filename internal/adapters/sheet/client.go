package sheet

// client.go — fetch del export CSV de la planilla con fallback de URLs.
//
// El export se publica en varias URLs (export directo, gviz, proxy CDN);
// cualquiera puede fallar o devolver HTML de error según el humor de
// Google. Estrategia: probar las URLs en orden, con retries y backoff por
// URL, y quedarse con la primera que devuelva un CSV parseable.

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"caxcast/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second

	// Límite conservador: el export público de Google Sheets tolera poco
	// tráfico antes del 429.
	fetchRatePerSec = 2

	maxRetries    = 2
	baseRetryWait = 500 * time.Millisecond
)

// Client descarga el export CSV del pipeline, implementa ports.DealProvider.
type Client struct {
	http    *http.Client
	urls    []string
	limiter *rate.Limiter
}

// NewClient crea un Client que intenta las URLs en el orden dado.
func NewClient(urls []string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		urls:    urls,
		limiter: rate.NewLimiter(fetchRatePerSec, 2),
	}
}

// FetchDeals intenta cada URL configurada hasta obtener un snapshot válido.
func (c *Client) FetchDeals(ctx context.Context) ([]domain.Deal, error) {
	if len(c.urls) == 0 {
		return nil, fmt.Errorf("sheet.FetchDeals: no export URLs configured")
	}

	var lastErr error
	for i, url := range c.urls {
		deals, err := c.fetchOne(ctx, url)
		if err != nil {
			slog.Warn("sheet export fetch failed, trying next URL",
				"url_index", i,
				"err", err,
			)
			lastErr = err
			continue
		}
		slog.Debug("sheet export fetched", "url_index", i, "deals", len(deals))
		return deals, nil
	}
	return nil, fmt.Errorf("sheet.FetchDeals: all %d URLs failed: %w", len(c.urls), lastErr)
}

// fetchOne descarga y parsea una URL, con retries y backoff exponencial.
func (c *Client) fetchOne(ctx context.Context, url string) ([]domain.Deal, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		deals, err := c.doFetch(ctx, url)
		if err == nil {
			return deals, nil
		}
		if attempt >= maxRetries || ctx.Err() != nil {
			return nil, err
		}
		c.sleep(ctx, attempt)
	}
}

func (c *Client) doFetch(ctx context.Context, url string) ([]domain.Deal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	deals, err := ParseDeals(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return deals, nil
}

// sleep espera con backoff exponencial, respetando la cancelación.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := baseRetryWait * time.Duration(1<<attempt)
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
