// Package api provides the HTTP client for the outreach backend. Every call
// is single-attempt; failures surface immediately as a *RemoteCallError for
// the controller to render as a system message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/helix-dev/helix/internal/reply"
)

// RemoteCallError reports a failed backend call: a transport failure, a
// non-2xx status, or a malformed response body.
type RemoteCallError struct {
	Op     string // e.g. "create campaign"
	Status int    // HTTP status; 0 for transport failures
	Detail string
}

func (e *RemoteCallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: %s: status %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("api: %s: %s", e.Op, e.Detail)
}

// IsRemoteCallError reports whether err is a *RemoteCallError.
func IsRemoteCallError(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}

// Client talks to the outreach backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL (e.g. "http://127.0.0.1:5080").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListCampaigns returns all campaigns for the user. A response without a
// "campaigns" field yields an empty slice, not an error.
func (c *Client) ListCampaigns(ctx context.Context, userID int64) ([]Campaign, error) {
	path := "/campaigns?user_id=" + url.QueryEscape(strconv.FormatInt(userID, 10))
	body, err := c.do(ctx, http.MethodGet, path, nil, "list campaigns")
	if err != nil {
		return nil, err
	}

	var parsed listCampaignsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &RemoteCallError{Op: "list campaigns", Detail: fmt.Sprintf("malformed body: %v", err)}
	}
	if parsed.Campaigns == nil {
		return []Campaign{}, nil
	}
	return parsed.Campaigns, nil
}

// CreateCampaign creates a campaign and returns its ID. A 2xx response whose
// body lacks campaign_id is an error: the caller must not refresh its
// campaign list off a failed creation.
func (c *Client) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (int64, error) {
	body, err := c.do(ctx, http.MethodPost, "/campaigns", req, "create campaign")
	if err != nil {
		return 0, err
	}

	var parsed createCampaignResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, &RemoteCallError{Op: "create campaign", Detail: fmt.Sprintf("malformed body: %v", err)}
	}
	if parsed.CampaignID == 0 {
		return 0, &RemoteCallError{Op: "create campaign", Detail: "response missing campaign_id"}
	}
	return parsed.CampaignID, nil
}

// GetCampaign fetches a single campaign by ID.
func (c *Client) GetCampaign(ctx context.Context, campaignID int64) (*Campaign, error) {
	path := "/campaigns/" + strconv.FormatInt(campaignID, 10)
	body, err := c.do(ctx, http.MethodGet, path, nil, "get campaign")
	if err != nil {
		return nil, err
	}

	var campaign Campaign
	if err := json.Unmarshal(body, &campaign); err != nil {
		return nil, &RemoteCallError{Op: "get campaign", Detail: fmt.Sprintf("malformed body: %v", err)}
	}
	return &campaign, nil
}

// GetConversation fetches stored conversation history.
func (c *Client) GetConversation(ctx context.Context, conversationID int64) (*Conversation, error) {
	path := "/conversations/" + strconv.FormatInt(conversationID, 10)
	body, err := c.do(ctx, http.MethodGet, path, nil, "get conversation")
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal(body, &conv); err != nil {
		return nil, &RemoteCallError{Op: "get conversation", Detail: fmt.Sprintf("malformed body: %v", err)}
	}
	return &conv, nil
}

// SendChatTurn submits one chat turn and returns the normalized assistant
// reply. The raw body goes through reply.Normalize, so a malformed assistant
// payload degrades rather than failing the call; only transport and HTTP
// errors are returned as errors.
func (c *Client) SendChatTurn(ctx context.Context, req ChatTurnRequest) (reply.Reply, []reply.Diagnostic, error) {
	body, err := c.do(ctx, http.MethodPost, "/chat", req, "chat turn")
	if err != nil {
		return reply.Reply{}, nil, err
	}

	r, diags := reply.Normalize(body)
	return r, diags, nil
}

// GenerateSequence asks the backend to generate an outreach sequence for a
// campaign. The result flows through the same normalization as chat turns.
func (c *Client) GenerateSequence(ctx context.Context, campaignID int64, req GenerateSequenceRequest) (reply.Reply, []reply.Diagnostic, error) {
	path := "/campaigns/" + strconv.FormatInt(campaignID, 10) + "/sequence"
	body, err := c.do(ctx, http.MethodPost, path, req, "generate sequence")
	if err != nil {
		return reply.Reply{}, nil, err
	}

	r, diags := reply.Normalize(body)
	return r, diags, nil
}

// EditSequence asks the backend to revise an existing sequence.
func (c *Client) EditSequence(ctx context.Context, sequenceID int64, instructions string) (reply.Reply, []reply.Diagnostic, error) {
	path := "/sequences/" + strconv.FormatInt(sequenceID, 10) + "/edit"
	req := map[string]string{"edit_instructions": instructions}
	body, err := c.do(ctx, http.MethodPost, path, req, "edit sequence")
	if err != nil {
		return reply.Reply{}, nil, err
	}

	r, diags := reply.Normalize(body)
	return r, diags, nil
}

// do issues a single request and returns the response body. Non-2xx statuses
// become a *RemoteCallError carrying a snippet of the body.
func (c *Client) do(ctx context.Context, method, path string, payload any, op string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &RemoteCallError{Op: op, Detail: fmt.Sprintf("marshal request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Detail: fmt.Sprintf("build request: %v", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Status: resp.StatusCode, Detail: fmt.Sprintf("reading body: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteCallError{Op: op, Status: resp.StatusCode, Detail: snippet(body)}
	}
	return body, nil
}

// snippet truncates a body for error messages.
func snippet(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
