package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/logger"
)

// APIError is a single error object from the edge firewall API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RuleTarget identifies what a firewall rule applies to.
type RuleTarget struct {
	Target string `json:"target"`
	Value  string `json:"value"`
}

// Rule is the firewall access rule resource returned by the API.
type Rule struct {
	ID            string     `json:"id"`
	Mode          string     `json:"mode"`
	Configuration RuleTarget `json:"configuration"`
	Notes         string     `json:"notes"`
}

// RuleResponse is the API envelope for rule create/delete calls.
type RuleResponse struct {
	Success bool       `json:"success"`
	Errors  []APIError `json:"errors,omitempty"`
	Result  *Rule      `json:"result,omitempty"`
}

type blockRequest struct {
	Mode          string     `json:"mode"`
	Configuration RuleTarget `json:"configuration"`
	Notes         string     `json:"notes"`
}

// Client mirrors local block decisions into an edge-level firewall rule so
// abusive traffic is shed before it reaches the application. Edge blocking
// is an optimization, never a correctness dependency: callers must keep the
// local block regardless of the outcome here.
type Client struct {
	apiToken string
	zoneID   string
	apiBase  string
	httpc    *http.Client
}

// NewClient builds an edge client from config. Missing credentials are
// valid; the client then reports unconfigured and every call returns nil.
func NewClient(cfg config.EdgeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiToken: cfg.APIToken,
		zoneID:   cfg.ZoneID,
		apiBase:  cfg.APIBase,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether edge sync credentials are present.
func (c *Client) Configured() bool {
	return c.apiToken != "" && c.zoneID != ""
}

func (c *Client) rulesURL() string {
	return fmt.Sprintf("%s/zones/%s/firewall/access_rules/rules", c.apiBase, c.zoneID)
}

// BlockIP creates an edge firewall rule blocking the IP. It returns
// (nil, nil) when credentials are not configured; that is a deliberate
// "feature disabled" signal, not an error.
func (c *Client) BlockIP(ctx context.Context, ip, note string) (*RuleResponse, error) {
	if !c.Configured() {
		logger.Log().Warn("edge firewall credentials not configured, skipping IP block")
		return nil, nil
	}
	if note == "" {
		note = "Blocked due to spam"
	}

	body, err := json.Marshal(blockRequest{
		Mode:          "block",
		Configuration: RuleTarget{Target: "ip", Value: ip},
		Notes:         note,
	})
	if err != nil {
		return nil, fmt.Errorf("encode block request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rulesURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build block request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		logger.WithFields(map[string]interface{}{"ip": ip, "errors": resp.Errors}).Error("edge firewall refused IP block")
	} else if resp.Result != nil {
		logger.WithFields(map[string]interface{}{"ip": ip, "rule_id": resp.Result.ID}).Info("blocked IP at edge")
	}
	return resp, nil
}

// UnblockRule deletes an edge firewall rule by ID. Same nil semantics as
// BlockIP when credentials are absent.
func (c *Client) UnblockRule(ctx context.Context, ruleID string) (*RuleResponse, error) {
	if !c.Configured() {
		logger.Log().Warn("edge firewall credentials not configured, skipping rule delete")
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s", c.rulesURL(), ruleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build unblock request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		logger.WithFields(map[string]interface{}{"rule_id": ruleID, "errors": resp.Errors}).Error("edge firewall refused rule delete")
	}
	return resp, nil
}

func (c *Client) do(req *http.Request) (*RuleResponse, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edge firewall request: %w", err)
	}
	defer httpResp.Body.Close()

	var resp RuleResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode edge firewall response: %w", err)
	}
	return &resp, nil
}

// DetectSpam reports whether more than threshold requests occurred inside
// the trailing 60 seconds. Usable independently of the request ledger.
func DetectSpam(timestamps []time.Time, threshold int) bool {
	if threshold <= 0 {
		threshold = 20
	}
	cutoff := time.Now().Add(-60 * time.Second)
	recent := 0
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			recent++
		}
	}
	return recent > threshold
}
