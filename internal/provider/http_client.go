package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/popeskul/wa-inbox/internal/models"
)

const (
	defaultBaseURL = "https://conversations.twilio.com"
	apiVersion     = "v1"
	maxErrorBody   = 64 * 1024
)

// HTTPClient implements Client against the provider's REST API.
type HTTPClient struct {
	baseURL    string
	accountSID string
	authToken  string
	http       *http.Client
}

// NewHTTPClient creates a provider client. A zero timeout leaves the http.Client default.
func NewHTTPClient(baseURL, accountSID, authToken string, timeout time.Duration) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPClient{
		baseURL:    baseURL,
		accountSID: accountSID,
		authToken:  authToken,
		http:       &http.Client{Timeout: timeout},
	}
}

type wireMeta struct {
	NextPageURL string `json:"next_page_url"`
}

type wireConversation struct {
	SID          string    `json:"sid"`
	FriendlyName string    `json:"friendly_name"`
	State        string    `json:"state"`
	Attributes   string    `json:"attributes"`
	DateCreated  time.Time `json:"date_created"`
	DateUpdated  time.Time `json:"date_updated"`
}

func (w wireConversation) model() models.ProviderConversation {
	return models.ProviderConversation{
		SID:          w.SID,
		FriendlyName: w.FriendlyName,
		State:        w.State,
		Attributes:   models.ParseDisplayAttributes(w.Attributes),
		CreatedAt:    w.DateCreated,
		UpdatedAt:    w.DateUpdated,
	}
}

type wireParticipant struct {
	SID              string                   `json:"sid"`
	Identity         string                   `json:"identity"`
	Attributes       string                   `json:"attributes"`
	MessagingBinding *models.MessagingBinding `json:"messaging_binding"`
}

func (w wireParticipant) model() models.Participant {
	return models.Participant{
		SID:        w.SID,
		Identity:   w.Identity,
		Binding:    w.MessagingBinding,
		Attributes: models.ParseDisplayAttributes(w.Attributes),
	}
}

type wireMessage struct {
	SID         string                  `json:"sid"`
	Author      string                  `json:"author"`
	Body        string                  `json:"body"`
	Media       []models.ProviderMedia  `json:"media"`
	Attributes  string                  `json:"attributes"`
	Delivery    *models.DeliveryReceipt `json:"delivery"`
	DateCreated time.Time               `json:"date_created"`
}

func (w wireMessage) model() models.ProviderMessage {
	return models.ProviderMessage{
		SID:        w.SID,
		Author:     w.Author,
		Body:       w.Body,
		Media:      w.Media,
		Attributes: models.ParseDisplayAttributes(w.Attributes),
		Delivery:   w.Delivery,
		CreatedAt:  w.DateCreated,
	}
}

// ListConversations returns one page. pageToken is the opaque cursor from a previous page.
func (c *HTTPClient) ListConversations(ctx context.Context, pageSize int, pageToken string) (*models.ConversationPage, error) {
	query := url.Values{}
	if pageToken != "" {
		parsed, err := url.ParseQuery(pageToken)
		if err != nil {
			return nil, fmt.Errorf("invalid page token: %w", err)
		}
		query = parsed
	}
	if pageSize > 0 {
		query.Set("PageSize", strconv.Itoa(pageSize))
	}

	var resp struct {
		Conversations []wireConversation `json:"conversations"`
		Meta          wireMeta           `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, "/Conversations", query, nil, &resp); err != nil {
		return nil, err
	}

	page := &models.ConversationPage{
		Conversations: make([]models.ProviderConversation, 0, len(resp.Conversations)),
		NextPageToken: nextPageToken(resp.Meta.NextPageURL),
	}
	for _, conv := range resp.Conversations {
		page.Conversations = append(page.Conversations, conv.model())
	}
	return page, nil
}

func (c *HTTPClient) FetchConversation(ctx context.Context, sid string) (*models.ProviderConversation, error) {
	var resp wireConversation
	if err := c.do(ctx, http.MethodGet, "/Conversations/"+url.PathEscape(sid), nil, nil, &resp); err != nil {
		return nil, err
	}
	conv := resp.model()
	return &conv, nil
}

func (c *HTTPClient) CreateConversation(ctx context.Context, params CreateConversationParams) (*models.ProviderConversation, error) {
	form := url.Values{}
	if params.FriendlyName != "" {
		form.Set("FriendlyName", params.FriendlyName)
	}
	if !params.Attributes.IsZero() {
		form.Set("Attributes", params.Attributes.Encode())
	}

	var resp wireConversation
	if err := c.do(ctx, http.MethodPost, "/Conversations", nil, form, &resp); err != nil {
		return nil, err
	}
	conv := resp.model()
	return &conv, nil
}

func (c *HTTPClient) DeleteConversation(ctx context.Context, sid string) error {
	return c.do(ctx, http.MethodDelete, "/Conversations/"+url.PathEscape(sid), nil, nil, nil)
}

func (c *HTTPClient) ListParticipants(ctx context.Context, conversationSID string) ([]models.Participant, error) {
	query := url.Values{"PageSize": {"100"}}

	var resp struct {
		Participants []wireParticipant `json:"participants"`
	}
	path := "/Conversations/" + url.PathEscape(conversationSID) + "/Participants"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Participant, 0, len(resp.Participants))
	for _, p := range resp.Participants {
		out = append(out, p.model())
	}
	return out, nil
}

func (c *HTTPClient) CreateParticipant(ctx context.Context, conversationSID string, params CreateParticipantParams) (*models.Participant, error) {
	form := url.Values{}
	if params.Identity != "" {
		form.Set("Identity", params.Identity)
	}
	if params.Address != "" {
		form.Set("MessagingBinding.Address", params.Address)
	}
	if params.ProxyAddress != "" {
		form.Set("MessagingBinding.ProxyAddress", params.ProxyAddress)
	}
	if !params.Attributes.IsZero() {
		form.Set("Attributes", params.Attributes.Encode())
	}

	var resp wireParticipant
	path := "/Conversations/" + url.PathEscape(conversationSID) + "/Participants"
	if err := c.do(ctx, http.MethodPost, path, nil, form, &resp); err != nil {
		return nil, err
	}
	p := resp.model()
	return &p, nil
}

func (c *HTTPClient) ListMessages(ctx context.Context, conversationSID string, pageSize int) ([]models.ProviderMessage, error) {
	query := url.Values{"Order": {"desc"}}
	if pageSize > 0 {
		query.Set("PageSize", strconv.Itoa(pageSize))
	}

	var resp struct {
		Messages []wireMessage `json:"messages"`
	}
	path := "/Conversations/" + url.PathEscape(conversationSID) + "/Messages"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ProviderMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, m.model())
	}
	return out, nil
}

func (c *HTTPClient) CreateMessage(ctx context.Context, conversationSID string, params CreateMessageParams) (*models.ProviderMessage, error) {
	form := url.Values{}
	if params.Author != "" {
		form.Set("Author", params.Author)
	}
	if params.ContentSID != "" {
		form.Set("ContentSid", params.ContentSID)
		if len(params.ContentVariables) > 0 {
			vars, err := json.Marshal(params.ContentVariables)
			if err != nil {
				return nil, fmt.Errorf("failed to encode content variables: %w", err)
			}
			form.Set("ContentVariables", string(vars))
		}
	} else {
		form.Set("Body", params.Body)
	}
	if !params.Attributes.IsZero() {
		form.Set("Attributes", params.Attributes.Encode())
	}

	var resp wireMessage
	path := "/Conversations/" + url.PathEscape(conversationSID) + "/Messages"
	if err := c.do(ctx, http.MethodPost, path, nil, form, &resp); err != nil {
		return nil, err
	}
	msg := resp.model()
	return &msg, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query, form url.Values, out interface{}) error {
	endpoint := c.baseURL + "/" + apiVersion + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{}
		_ = json.Unmarshal(raw, apiErr)
		apiErr.StatusCode = resp.StatusCode
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// nextPageToken turns the provider's next_page_url into an opaque cursor holding
// only its paging parameters.
func nextPageToken(nextPageURL string) string {
	if nextPageURL == "" {
		return ""
	}
	u, err := url.Parse(nextPageURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	token := url.Values{}
	for _, key := range []string{"Page", "PageToken"} {
		if v := q.Get(key); v != "" {
			token.Set(key, v)
		}
	}
	if token.Get("PageToken") == "" {
		return ""
	}
	return token.Encode()
}
