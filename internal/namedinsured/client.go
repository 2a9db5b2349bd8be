// Package namedinsured looks up the insured party of an account in the
// external CRM. Lookups never fail: any problem means "no data".
package namedinsured

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/certdesk/certdesk/pkg/logger"
	"github.com/certdesk/certdesk/pkg/metrics"
)

// NamedInsured is the read-only record returned by the CRM.
type NamedInsured struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// Roles returns the record keyed by mapping role.
func (n *NamedInsured) Roles() map[string]string {
	if n == nil {
		return map[string]string{}
	}
	return map[string]string{
		"name":          n.Name,
		"address_line1": n.AddressLine1,
		"address_line2": n.AddressLine2,
		"city":          n.City,
		"state":         n.State,
		"postal_code":   n.PostalCode,
		"email":         n.Email,
		"phone":         n.Phone,
	}
}

// Source returns the named insured of an account, or nil when none is available.
type Source interface {
	Lookup(ctx context.Context, accountID string) *NamedInsured
}

// Client calls GET <base>/accounts/<id>/named-insured.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Lookup(ctx context.Context, accountID string) *NamedInsured {
	if c.baseURL == "" || accountID == "" {
		metrics.NamedInsuredLookups.WithLabelValues("empty").Inc()
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/accounts/" + url.PathEscape(accountID) + "/named-insured"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.fail(accountID, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(accountID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.NamedInsuredLookups.WithLabelValues("empty").Inc()
		return nil
	case resp.StatusCode != http.StatusOK:
		logger.Warnf("named insured lookup for %s: status %d", accountID, resp.StatusCode)
		metrics.NamedInsuredLookups.WithLabelValues("error").Inc()
		return nil
	}
	var ni NamedInsured
	if err := json.NewDecoder(resp.Body).Decode(&ni); err != nil {
		return c.fail(accountID, err)
	}
	metrics.NamedInsuredLookups.WithLabelValues("found").Inc()
	return &ni
}

func (c *Client) fail(accountID string, err error) *NamedInsured {
	logger.Warnf("named insured lookup for %s failed: %v", accountID, err)
	metrics.NamedInsuredLookups.WithLabelValues("error").Inc()
	return nil
}

// None is a Source without data.
type None struct{}

func (None) Lookup(context.Context, string) *NamedInsured { return nil }
