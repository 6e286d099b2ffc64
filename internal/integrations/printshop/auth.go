package printshop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"order-desk/internal/dto"
	apperrors "order-desk/pkg/errors"
)

const refreshPath = "/users/user/token/refresh/"

// AuthClient обменивает токен обновления на новый токен доступа.
// Живёт отдельно от Provider: сам запрос обновления токен доступа не требует.
type AuthClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewAuthClient(baseURL string, logger *zap.Logger) *AuthClient {
	return &AuthClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("printshop_auth"),
	}
}

func (a *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(dto.RefreshTokenRequestDTO{Refresh: refreshToken})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса обновления: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса на обновление токена: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewFetchError("refresh_token", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", statusError("refresh_token", resp.StatusCode, bodyBytes)
	}

	var out dto.RefreshTokenResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа с токеном: %w", err)
	}
	if out.Token() == "" {
		return "", fmt.Errorf("%w: сервер не вернул access", apperrors.ErrInvalidToken)
	}

	a.logger.Debug("Токен доступа обновлён")
	return out.Token(), nil
}
