// Package client is a small Go client for the virtual-studio HTTP API,
// covering the configurator surface used by kiosk installations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client { return &Client{BaseURL: baseURL, HTTP: http.DefaultClient} }

// State mirrors the /api/v1/state response.
type State struct {
	Ready        bool              `json:"ready"`
	Mode         string            `json:"mode"`
	CarID        string            `json:"carId"`
	CarLoad      string            `json:"carLoad"`
	ColorHex     string            `json:"colorHex"`
	WheelID      string            `json:"wheelId"`
	BackgroundID string            `json:"backgroundId"`
	IsDay        bool              `json:"isDay"`
	Sequences    []domain.Sequence `json:"sequences"`
	Queue        []string          `json:"queue"`
	IsPlaying    bool              `json:"isPlaying"`
	Render       *domain.RenderJob `json:"render"`
}

func (c *Client) State(ctx context.Context) (State, error) {
	var st State
	err := c.do(ctx, http.MethodGet, "/api/v1/state", nil, &st)
	return st, err
}

func (c *Client) ListCars(ctx context.Context) ([]domain.Car, error) {
	var out struct {
		Cars []domain.Car `json:"cars"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/cars", nil, &out)
	return out.Cars, err
}

func (c *Client) ListBackgrounds(ctx context.Context) ([]domain.BackgroundOption, error) {
	var out struct {
		Backgrounds []domain.BackgroundOption `json:"backgrounds"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/backgrounds", nil, &out)
	return out.Backgrounds, err
}

func (c *Client) SelectCar(ctx context.Context, carID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/car/select", map[string]string{"carId": carID}, nil)
}

func (c *Client) SetColor(ctx context.Context, hex string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/car/color", map[string]string{"hex": hex}, nil)
}

func (c *Client) SetWheel(ctx context.Context, wheelID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/car/wheel", map[string]string{"wheelId": wheelID}, nil)
}

func (c *Client) ChangeBackground(ctx context.Context, backgroundID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/environment/background", map[string]string{"backgroundId": backgroundID}, nil)
}

func (c *Client) ChangeDayNight(ctx context.Context, isDay bool) error {
	return c.do(ctx, http.MethodPost, "/api/v1/environment/daynight", map[string]bool{"isDay": isDay}, nil)
}

func (c *Client) CaptureScreenshot(ctx context.Context, withBackground bool) error {
	return c.do(ctx, http.MethodPost, "/api/v1/screenshots", map[string]bool{"withBackground": withBackground}, nil)
}

func (c *Client) ListScreenshots(ctx context.Context) ([]domain.Screenshot, error) {
	var out struct {
		Screenshots []domain.Screenshot `json:"screenshots"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/screenshots", nil, &out)
	return out.Screenshots, err
}

func (c *Client) DeleteScreenshot(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/screenshots/"+id, nil, nil)
}

func (c *Client) RefreshSequences(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/sequences/refresh", nil, nil)
}

func (c *Client) ToggleSequence(ctx context.Context, sequenceID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/sequences/toggle", map[string]string{"sequenceId": sequenceID}, nil)
}

func (c *Client) Play(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/sequences/play", nil, nil)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/sequences/stop", nil, nil)
}

func (c *Client) StartRender(ctx context.Context) (*domain.RenderJob, error) {
	var job domain.RenderJob
	if err := c.do(ctx, http.MethodPost, "/api/v1/render", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) CancelRender(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/render/cancel", nil, nil)
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var ae apiError
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Error.Code != "" {
			return fmt.Errorf("%s: %s", ae.Error.Code, ae.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
