package segment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tensor names used by the segmentation model.
const (
	InputName  = "images"
	OutputName = "output"
)

// Runtime runs the segmentation network forward pass.
//
// Run receives a normalized input tensor and returns the raw (unnormalized)
// class score volume.
type Runtime interface {
	Run(ctx context.Context, in *Tensor) (*Volume, error)
}

// RemoteRuntime runs inference through an HTTP model server.
//
// At construction the model definition and weights are read from disk and
// uploaded to <base>/load as a multipart form with "param" and "bin" files.
// Each Run POSTs the input to <base>/run as JSON:
//
//	{"input": "images", "output": "output", "shape": [3, 320, 320], "data": [...]}
//
// and expects the named output back as {"shape": [c, h, w], "data": [...]}.
type RemoteRuntime struct {
	url    *url.URL
	client *http.Client
	model  string
}

type tensorMessage struct {
	Input  string    `json:"input,omitempty"`
	Output string    `json:"output,omitempty"`
	Model  string    `json:"model,omitempty"`
	Shape  []int     `json:"shape"`
	Data   []float32 `json:"data"`
}

type loadResponse struct {
	Model string `json:"model"`
}

// NewRemoteRuntime loads the model artifacts at paramPath and binPath into
// the model server at baseURL. A nil client uses http.DefaultClient.
//
// Any failure to read the artifacts or register them returns an error
// wrapping ErrModelLoad.
func NewRemoteRuntime(ctx context.Context, baseURL, paramPath, binPath string, client *http.Client) (*RemoteRuntime, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime url: %w: %w", err, ErrModelLoad)
	}
	if client == nil {
		client = http.DefaultClient
	}

	param, err := os.ReadFile(paramPath)
	if err != nil {
		return nil, fmt.Errorf("read model definition: %w: %w", err, ErrModelLoad)
	}
	bin, err := os.ReadFile(binPath)
	if err != nil {
		return nil, fmt.Errorf("read model weights: %w: %w", err, ErrModelLoad)
	}

	r := &RemoteRuntime{url: u, client: client}
	model, err := r.load(ctx, filepath.Base(paramPath), param, filepath.Base(binPath), bin)
	if err != nil {
		return nil, fmt.Errorf("register model: %w: %w", err, ErrModelLoad)
	}
	r.model = model
	return r, nil
}

func (r *RemoteRuntime) load(ctx context.Context, paramName string, param []byte, binName string, bin []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range []struct {
		field, name string
		data        []byte
	}{
		{"param", paramName, param},
		{"bin", binName, bin},
	} {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			return "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return "", fmt.Errorf("write form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	var resp loadResponse
	if err := r.post(ctx, "/load", writer.FormDataContentType(), body, &resp); err != nil {
		return "", err
	}
	return resp.Model, nil
}

// Run implements Runtime.
func (r *RemoteRuntime) Run(ctx context.Context, in *Tensor) (*Volume, error) {
	if in == nil || len(in.Data) == 0 {
		return nil, fmt.Errorf("run: empty tensor: %w", ErrInvalidInput)
	}

	payload, err := json.Marshal(tensorMessage{
		Input:  InputName,
		Output: OutputName,
		Model:  r.model,
		Shape:  []int{in.Channels, in.Height, in.Width},
		Data:   in.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode tensor: %w", err)
	}

	var out tensorMessage
	if err := r.post(ctx, "/run", "application/json", bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}
	if len(out.Shape) != 3 {
		return nil, fmt.Errorf("output rank %d, want 3: %w", len(out.Shape), ErrShape)
	}

	v := &Volume{Classes: out.Shape[0], Height: out.Shape[1], Width: out.Shape[2], Data: out.Data}
	if err := v.Validate(out.Shape[0], out.Shape[1], out.Shape[2]); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *RemoteRuntime) post(ctx context.Context, path, contentType string, body io.Reader, dst any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", contentType)

	response, err := r.client.Do(request)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(response.Body)
		return fmt.Errorf("runtime response status code: %d, body: %s", response.StatusCode, msg)
	}

	if err := json.NewDecoder(response.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
