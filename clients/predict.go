package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// --- Auxiliary image classifier (/predict) ---
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}
type PredictResp struct {
	Predictions []Prediction `json:"predictions"`
}

func (h *HTTP) Predict(ctx context.Context, url string, image []byte) (*PredictResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, err
	}
	if _, err = fw.Write(image); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/predict", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("predict", resp)
	}

	var out PredictResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("predict decode: %w", err)
	}
	return &out, nil
}

// AngryProbability returns the "angry" entry's probability, if present.
func AngryProbability(preds []Prediction) (float64, bool) {
	for _, p := range preds {
		if strings.EqualFold(p.Label, "angry") {
			return p.Probability, true
		}
	}
	return 0, false
}

// AuxClassifier scores frames against a remote /predict endpoint.
type AuxClassifier struct {
	h   *HTTP
	url string
}

func NewAuxClassifier(h *HTTP, url string) *AuxClassifier {
	return &AuxClassifier{h: h, url: url}
}

// AngryConfidence returns ErrClassifierUnavailable when no endpoint is set,
// the image is empty, or the call fails.
func (a *AuxClassifier) AngryConfidence(ctx context.Context, image []byte) (float64, error) {
	if a == nil || a.url == "" || len(image) == 0 {
		return 0, ErrClassifierUnavailable
	}
	out, err := a.h.Predict(ctx, a.url, image)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	p, ok := AngryProbability(out.Predictions)
	if !ok {
		return 0, fmt.Errorf("%w: no angry class in response", ErrClassifierUnavailable)
	}
	return p, nil
}
