package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// IPQSResult carries the fraud indicators we keep from an
// IPQualityScore lookup.
type IPQSResult struct {
	Success     bool   `json:"success"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Proxy       bool   `json:"proxy"`
	Tor         bool   `json:"tor"`
	VPN         bool   `json:"vpn"`
	BotStatus   bool   `json:"bot_status"`
	RecentAbuse bool   `json:"recent_abuse"`
	FraudScore  int    `json:"fraud_score"`
	ISP         string `json:"ISP"`
	Message     string `json:"message"`
	// Local is set when the lookup was short-circuited for a
	// private address and no API call was made.
	Local bool `json:"-"`
}

// RiskLevel buckets a fraud score the way the reporting UI expects.
func RiskLevel(score int) string {
	switch {
	case score >= 90:
		return "high"
	case score >= 85:
		return "risky"
	case score >= 75:
		return "suspicious"
	default:
		return "low"
	}
}

// IPQSClient talks to the IPQualityScore JSON API. Two API keys are
// supported; when the first key fails (quota exhausted, revoked) the
// lookup is retried once on the second.
type IPQSClient struct {
	apiKeys    []string
	baseURL    string
	strictness int
	httpClient *http.Client
}

func NewIPQSClient(primaryKey, fallbackKey string) *IPQSClient {
	keys := []string{primaryKey}
	if fallbackKey != "" {
		keys = append(keys, fallbackKey)
	}
	return &IPQSClient{
		apiKeys:    keys,
		baseURL:    "https://www.ipqualityscore.com/api/json/ip",
		strictness: 1,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Analyze looks up one IP address. Private and loopback addresses
// never reach the API; they come back as a clean local result.
func (c *IPQSClient) Analyze(ctx context.Context, ipAddress string) (*IPQSResult, error) {
	if isPrivateIP(ipAddress) {
		return &IPQSResult{
			Success:     true,
			CountryCode: "LOCAL",
			City:        "Local Network",
			Region:      "N/A",
			Local:       true,
		}, nil
	}

	var lastErr error
	for _, key := range c.apiKeys {
		res, err := c.lookup(ctx, key, ipAddress)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *IPQSClient) lookup(ctx context.Context, apiKey, ipAddress string) (*IPQSResult, error) {
	u := fmt.Sprintf("%s/%s/%s?strictness=%d",
		c.baseURL, apiKey, url.PathEscape(ipAddress), c.strictness)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("ipqs: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipqs: api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipqs: api returned %d", resp.StatusCode)
	}

	var result IPQSResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ipqs: decode response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("ipqs: lookup rejected: %s", result.Message)
	}
	return &result, nil
}

func isPrivateIP(ipAddress string) bool {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
