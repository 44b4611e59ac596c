package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// --- Display ---
type HistoryItem struct {
	At    time.Time `json:"at"`
	Emoji string    `json:"emoji"`
	Text  string    `json:"text"`
	Color string    `json:"color"`
}

type RenderReq struct {
	SessionID  string      `json:"session_id"`
	Label      string      `json:"label"`
	Emoji      string      `json:"emoji"`
	Suggestion string      `json:"suggestion"`
	Background string      `json:"background"`
	History    HistoryItem `json:"history"`
	Talking    bool        `json:"talking,omitempty"`
}

type RenderResp struct{ Status string }

func (h *HTTP) Render(ctx context.Context, url string, req RenderReq) (*RenderResp, error) {
	var out RenderResp
	if err := h.postJSON(ctx, url+"/render", "display render", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ChartReq struct {
	SessionID string         `json:"session_id"`
	Counts    map[string]int `json:"counts"`
}
type ChartResp struct{ Status string }

func (h *HTTP) Chart(ctx context.Context, url string, req ChartReq) (*ChartResp, error) {
	var out ChartResp
	if err := h.postJSON(ctx, url+"/chart", "display chart", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) postJSON(ctx context.Context, url, what string, in, out any) error {
	b, _ := json.Marshal(in)
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := h.c.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusErr(what, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", what, err)
	}
	return nil
}
