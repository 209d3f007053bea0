package detection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RemoteDetector runs detection through an HTTP inference service.
//
// Each call POSTs the image as a PNG multipart upload to <base>/detect and
// expects a JSON body of the form:
//
//	{"detections": [{"label": 0, "confidence": 0.93, "x": 10, "y": 4, "width": 120, "height": 118}]}
type RemoteDetector struct {
	url    *url.URL
	client *http.Client
}

type remoteDetection struct {
	Label      int     `json:"label"`
	Confidence float32 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

type detectResponse struct {
	Detections []remoteDetection `json:"detections"`
}

// NewRemoteDetector creates a detector client for the service at baseURL.
// A nil client uses http.DefaultClient.
func NewRemoteDetector(baseURL string, client *http.Client) (*RemoteDetector, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid detector url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteDetector{url: u, client: client}, nil
}

// Detect implements Detector.
func (d *RemoteDetector) Detect(ctx context.Context, img image.Image, confThreshold, nmsThreshold float64) ([]Object, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "frame.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := writer.WriteField("conf_threshold", strconv.FormatFloat(confThreshold, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := writer.WriteField("nms_threshold", strconv.FormatFloat(nmsThreshold, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url.JoinPath("/detect").String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := d.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf("detector response status code: %d, body: %s", response.StatusCode, msg)
	}

	var resp detectResponse
	if err := json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	objs := make([]Object, 0, len(resp.Detections))
	for _, det := range resp.Detections {
		objs = append(objs, Object{
			Label:      det.Label,
			Confidence: det.Confidence,
			Rect:       image.Rect(det.X, det.Y, det.X+det.Width, det.Y+det.Height),
		})
	}
	return objs, nil
}
