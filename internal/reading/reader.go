// Package reading is the boundary to the gauge reading computation.
//
// The algorithm that turns a pointer/scale mask into a physical value is not
// part of this repository. Reader fixes its contract: one value per meter,
// in the order the meters were given. RemoteReader delegates to an HTTP
// service implementing that contract.
package reading

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/meter-reader/internal/segment"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reader computes one reading per meter from its letterboxed crop and mask.
//
// crops and masks are index aligned and have the same length.
type Reader interface {
	Read(ctx context.Context, crops []image.Image, masks []*segment.Mask) ([]float64, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context, crops []image.Image, masks []*segment.Mask) ([]float64, error)

// Read calls f.
func (f ReaderFunc) Read(ctx context.Context, crops []image.Image, masks []*segment.Mask) ([]float64, error) {
	return f(ctx, crops, masks)
}

// RemoteReader posts meters to an HTTP reading service at <base>/read.
//
// Request body:
//
//	{"meters": [{"image_base64": "...", "mime_type": "image/png",
//	             "mask": {"width": 320, "height": 320, "data_base64": "..."}}]}
//
// Response body:
//
//	{"readings": [0.42]}
type RemoteReader struct {
	url    *url.URL
	client *http.Client
}

type meterPayload struct {
	ImageBase64 string      `json:"image_base64"`
	MimeType    string      `json:"mime_type"`
	Mask        maskPayload `json:"mask"`
}

type maskPayload struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	DataBase64 string `json:"data_base64"`
}

type readRequest struct {
	Meters []meterPayload `json:"meters"`
}

type readResponse struct {
	Readings []float64 `json:"readings"`
}

// NewRemoteReader creates a reader client for the service at baseURL.
// A nil client uses http.DefaultClient.
func NewRemoteReader(baseURL string, client *http.Client) (*RemoteReader, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid reader url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteReader{url: u, client: client}, nil
}

// Read implements Reader.
func (r *RemoteReader) Read(ctx context.Context, crops []image.Image, masks []*segment.Mask) ([]float64, error) {
	if len(crops) != len(masks) {
		return nil, fmt.Errorf("got %d crops and %d masks", len(crops), len(masks))
	}
	if len(crops) == 0 {
		return nil, nil
	}

	req := readRequest{Meters: make([]meterPayload, len(crops))}
	for i := range crops {
		var buf bytes.Buffer
		if err := png.Encode(&buf, crops[i]); err != nil {
			return nil, fmt.Errorf("failed to encode crop %d: %w", i, err)
		}
		req.Meters[i] = meterPayload{
			ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
			MimeType:    "image/png",
			Mask: maskPayload{
				Width:      masks[i].Width,
				Height:     masks[i].Height,
				DataBase64: base64.StdEncoding.EncodeToString(masks[i].Pix),
			},
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url.JoinPath("/read").String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf("reader response status code: %d, body: %s", response.StatusCode, msg)
	}

	var resp readResponse
	if err := json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	if len(resp.Readings) != len(crops) {
		return nil, fmt.Errorf("got %d readings for %d meters", len(resp.Readings), len(crops))
	}
	return resp.Readings, nil
}
