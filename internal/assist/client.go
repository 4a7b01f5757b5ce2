// Package assist is the client for the intent-classification and reply
// service. The service is opaque: the core sends ordered chat history plus an
// optional wallet summary and receives either a plain assistant reply or a
// send_token action, which re-enters the transfer pipeline exactly like a
// locally parsed command.
package assist

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/httpx"
	"github.com/ENuel20/SoNa/internal/model"
)

// ActionSendToken is the only action type the core understands.
const ActionSendToken = "send_token"

// Action is an optional structured instruction attached to a reply.
type Action struct {
	Type      string      `json:"type"`
	Token     string      `json:"token"`
	Amount    json.Number `json:"amount"`
	Recipient string      `json:"recipient"`
}

// Reply is one assistant response.
type Reply struct {
	Content string  `json:"content"`
	Role    string  `json:"role"`
	Action  *Action `json:"action,omitempty"`
}

type request struct {
	Messages   []model.Message      `json:"messages"`
	WalletInfo *model.WalletSummary `json:"wallet_info,omitempty"`
}

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
}

func New(httpClient *httpx.Client, baseURL, apiKey string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// Classify sends the conversation and wallet context and returns the
// assistant's reply.
func (c *Client) Classify(ctx context.Context, messages []model.Message, summary *model.WalletSummary) (Reply, error) {
	if c.baseURL == "" {
		return Reply{}, apperr.New(apperr.CodeUsage, "assistant endpoint is not configured")
	}
	if len(messages) == 0 {
		return Reply{}, apperr.New(apperr.CodeUsage, "empty conversation")
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var reply Reply
	if _, err := c.http.PostJSON(ctx, c.baseURL+"/v1/chat", request{
		Messages:   messages,
		WalletInfo: summary,
	}, headers, &reply); err != nil {
		return Reply{}, err
	}
	if strings.TrimSpace(reply.Content) == "" {
		return Reply{}, apperr.New(apperr.CodeUnavailable, "assistant returned an empty reply")
	}
	if reply.Role == "" {
		reply.Role = model.RoleAssistant
	}
	return reply, nil
}

// DefaultTimeout is the transport timeout assist clients are built with.
const DefaultTimeout = 30 * time.Second
