package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// TurnstileService verifies challenge tokens on apology submission. With no
// secret configured verification passes unconditionally so local development
// works without a Cloudflare account.
type TurnstileService struct {
	secret    string
	verifyURL string
	httpc     *http.Client
}

func NewTurnstileService(secret string) *TurnstileService {
	return &TurnstileService{
		secret:    secret,
		verifyURL: turnstileVerifyURL,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify checks a client challenge token against the siteverify endpoint.
func (s *TurnstileService) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if s.secret == "" {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", s.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("turnstile verify: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode turnstile response: %w", err)
	}
	return result.Success, nil
}
