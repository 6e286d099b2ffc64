package printshop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	apperrors "order-desk/pkg/errors"
)

const maxErrorBody = 512

// request - один вызов сервера. Body сериализуется в JSON.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// fetchJSON выполняет запрос и разбирает ответ в T. GET повторяется при повторяемых ошибках.
func fetchJSON[T any](ctx context.Context, p *Provider, r request) (T, error) {
	var out T

	// каждая попытка разбирает ответ в новое значение, out меняется только при успехе
	call := func(ctx context.Context) error {
		raw, err := p.do(ctx, r)
		if err != nil {
			return err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperrors.NewFetchError(r.op, http.StatusOK, fmt.Errorf("ошибка парсинга JSON: %w", err))
		}
		out = v
		return nil
	}

	if r.method != http.MethodGet || p.maxRetries == 0 {
		err := call(ctx)
		return out, err
	}

	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewExponential(p.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := call(ctx)
		if apperrors.IsRetryable(err) {
			p.logger.Debug("Повтор запроса", zap.String("op", r.op), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	return out, err
}

// do отправляет запрос с токеном и возвращает тело успешного ответа.
func (p *Provider) do(ctx context.Context, r request) (_ []byte, err error) {
	started := time.Now()
	defer func() { p.metrics.ObserveRemote(r.op, started, err) }()

	token, err := p.tokens.GetValidToken(ctx)
	if err != nil {
		// ошибки сессии отдаём как есть, их обрабатывает вызывающий
		return nil, err
	}

	endpoint := p.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сериализации тела: %w", r.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка создания запроса: %w", r.op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError(r.op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewFetchError(r.op, 0, fmt.Errorf("ошибка чтения ответа: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("Сервер вернул ошибку",
			zap.String("op", r.op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, statusError(r.op, resp.StatusCode, raw)
	}
	return raw, nil
}

func statusError(op string, code int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var cause error
	switch code {
	case http.StatusNotFound:
		cause = apperrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		cause = apperrors.ErrUnauthorized
	case http.StatusBadRequest:
		cause = fmt.Errorf("%w: %s", apperrors.ErrBadRequest, body)
	default:
		cause = fmt.Errorf("тело ответа: %s", body)
	}
	return apperrors.NewFetchError(op, code, cause)
}
