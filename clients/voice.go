package clients

import (
	"context"
)

// --- Voice (/speak, /play, /stop) ---
type SpeakReq struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type PlayReq struct {
	Clip string `json:"clip"`
}
type PlayResp struct {
	Handle string `json:"handle"`
}

type StopReq struct {
	Handle string `json:"handle,omitempty"`
}

func (h *HTTP) Speak(ctx context.Context, url string, req SpeakReq) error {
	return h.postJSON(ctx, url+"/speak", "voice speak", req, nil)
}

// CancelSpeech stops any utterance in progress.
func (h *HTTP) CancelSpeech(ctx context.Context, url string) error {
	return h.postJSON(ctx, url+"/speak/cancel", "voice cancel", struct{}{}, nil)
}

func (h *HTTP) Play(ctx context.Context, url, clip string) (*PlayResp, error) {
	var out PlayResp
	if err := h.postJSON(ctx, url+"/play", "voice play", PlayReq{Clip: clip}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) StopPlayback(ctx context.Context, url, handle string) error {
	return h.postJSON(ctx, url+"/stop", "voice stop", StopReq{Handle: handle}, nil)
}
