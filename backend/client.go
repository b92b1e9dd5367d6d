package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"hotel-frontdesk/models"
)

type ClientConfig struct {
	BaseURL string
	Token   string
	// Timeout of zero leaves the transport defaults in place.
	Timeout time.Duration
}

// Client talks to the collaborator's REST API. Responses use the
// {"success": bool, "data": ..., "error": "..."} envelope.
type Client struct {
	// baseURL has no trailing slash.
	baseURL string

	// token is sent as a bearer token when set.
	token string

	hc *http.Client
}

var _ API = (*Client)(nil)

func NewClient(c ClientConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(c.BaseURL, "/"),
		token:   c.Token,
		hc:      &http.Client{Timeout: c.Timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends body as JSON (when non-nil) and decodes the envelope's data into
// out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: new request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, decodeErr)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

func (c *Client) GetRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	var room models.Room
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/rooms/%d", roomID), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) ListAvailableRooms(ctx context.Context, hotelID uint) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/hotels/%d/rooms/available", hotelID), nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) CheckIn(ctx context.Context, roomID uint, p models.CheckinPayload) (*models.Room, error) {
	return c.roomAction(ctx, http.MethodPost, roomID, "checkin", p)
}

func (c *Client) CheckOut(ctx context.Context, roomID uint, p models.CheckoutPayload) (*models.Room, error) {
	return c.roomAction(ctx, http.MethodPost, roomID, "checkout", p)
}

func (c *Client) Clean(ctx context.Context, roomID uint, p models.CleanPayload) (*models.Room, error) {
	return c.roomAction(ctx, http.MethodPost, roomID, "clean", p)
}

func (c *Client) UpdateStatus(ctx context.Context, roomID uint, p models.StatusPayload) (*models.Room, error) {
	return c.roomAction(ctx, http.MethodPatch, roomID, "status", p)
}

func (c *Client) Transfer(ctx context.Context, sourceID uint, p models.TransferPayload) (*models.Room, *models.Room, error) {
	var out struct {
		Source *models.Room `json:"source"`
		Target *models.Room `json:"target"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/rooms/%d/transfer", sourceID), p, &out); err != nil {
		return nil, nil, err
	}
	if out.Source == nil || out.Target == nil {
		return nil, nil, fmt.Errorf("transfer %d -> %d: incomplete response", sourceID, p.TargetID)
	}
	return out.Source, out.Target, nil
}

func (c *Client) roomAction(ctx context.Context, method string, roomID uint, action string, body any) (*models.Room, error) {
	var room models.Room
	if err := c.do(ctx, method, fmt.Sprintf("/rooms/%d/%s", roomID, action), body, &room); err != nil {
		return nil, err
	}
	if room.ID == 0 {
		return nil, fmt.Errorf("%s room %d: empty response", action, roomID)
	}
	return &room, nil
}

func (c *Client) RoomHistory(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
	q.Normalize()
	v, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("encode history query: %w", err)
	}
	var page models.HistoryPage
	if err := c.do(ctx, http.MethodGet, "/rooms/history?"+v.Encode(), nil, &page); err != nil {
		return nil, err
	}
	if page.Records == nil {
		page.Records = []models.HistoryRecord{}
	}
	return &page, nil
}

func (c *Client) HotelInfo(ctx context.Context, hotelID uint) (*models.HotelInfo, error) {
	var info models.HotelInfo
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/hotels/%d", hotelID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) GetInvoice(ctx context.Context, id uint) (*models.InvoiceData, error) {
	var inv models.InvoiceData
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/invoices/%d", id), nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) CreateInvoice(ctx context.Context, in *models.InvoiceData) (*models.InvoiceData, error) {
	var inv models.InvoiceData
	if err := c.do(ctx, http.MethodPost, "/invoices", in, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) UpdateInvoice(ctx context.Context, id uint, in *models.InvoiceData) (*models.InvoiceData, error) {
	var inv models.InvoiceData
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/invoices/%d", id), in, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) DeleteInvoice(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/invoices/%d", id), nil, nil)
}

func (c *Client) UpdateInvoiceStatus(ctx context.Context, id uint, status models.PaymentStatus) (*models.InvoiceData, error) {
	var inv models.InvoiceData
	body := models.InvoiceStatusPayload{Status: status}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/invoices/%d/status", id), body, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) EmailInvoice(ctx context.Context, id uint, email string) error {
	body := models.InvoiceEmailPayload{Email: email}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/invoices/%d/email", id), body, nil)
}
