package dto

type RefreshTokenRequestDTO struct {
	Refresh string `json:"refresh"`
}

// RefreshTokenResponseDTO - сервер отдаёт "access"; "access_token" принимаем для совместимости.
type RefreshTokenResponseDTO struct {
	Access      string `json:"access"`
	AccessToken string `json:"access_token"`
}

func (r RefreshTokenResponseDTO) Token() string {
	if r.Access != "" {
		return r.Access
	}
	return r.AccessToken
}
