package clova

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/internal/utils"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
	"github.com/google/uuid"
)

const (
	// EnvAPIURL holds the APIGW invoke URL of the General OCR domain
	EnvAPIURL = "CLOVA_OCR_API_URL"
	// EnvSecretKey holds the secret key issued for that domain
	EnvSecretKey = "CLOVA_OCR_SECRET_KEY"

	SecretHeader = "X-OCR-SECRET"
	apiVersion   = "V2"
	imageName    = "demo"
)

// Provider implements the CLOVA General OCR provider
type Provider struct {
	apiURL    string
	secretKey string
	client    *http.Client
	now       func() time.Time
	requestID func() string
}

// New creates a new CLOVA provider
func New(apiURL, secretKey string) *Provider {
	return &Provider{
		apiURL:    strings.TrimSpace(apiURL),
		secretKey: strings.TrimSpace(secretKey),
		client:    &http.Client{},
		now:       time.Now,
		requestID: uuid.NewString,
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "clova"
}

// ValidateConfig validates the CLOVA configuration
func (p *Provider) ValidateConfig(config providers.Config) error {
	if p.apiURL == "" || p.secretKey == "" {
		return fmt.Errorf("%s and %s must be set", EnvAPIURL, EnvSecretKey)
	}
	u, err := url.Parse(p.apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CLOVA OCR API URL: %s", utils.MaskSensitiveData(p.apiURL))
	}
	return nil
}

// Recognize sends one image to the General OCR endpoint
func (p *Provider) Recognize(ctx context.Context, config providers.Config, img providers.Image) (providers.Result, error) {
	if p.apiURL == "" || p.secretKey == "" {
		return providers.Result{}, fmt.Errorf("%s and %s must be set", EnvAPIURL, EnvSecretKey)
	}

	ctx, cancel := providers.WithTimeout(ctx, config)
	defer cancel()

	body, contentType, err := p.buildRequestBody(img)
	if err != nil {
		return providers.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, body)
	if err != nil {
		return providers.Result{}, err
	}
	req.Header.Set(SecretHeader, p.secretKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return providers.Result{}, fmt.Errorf("CLOVA OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Result{}, fmt.Errorf("failed to read CLOVA OCR response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providers.Result{}, fmt.Errorf("CLOVA OCR API error: %d - %s",
			resp.StatusCode, utils.MaskSecret(providers.TruncateBody(raw), p.secretKey))
	}

	fields, err := ParseResponse(raw)
	if err != nil {
		return providers.Result{}, err
	}

	return providers.Result{Fields: fields, Raw: raw}, nil
}

// buildRequestBody assembles the multipart form: a JSON "message" part
// describing the image followed by the "file" part with its bytes
func (p *Provider) buildRequestBody(img providers.Image) (io.Reader, string, error) {
	message, err := json.Marshal(Request{
		Images:    []RequestImage{{Format: img.Format, Name: imageName}},
		RequestID: p.requestID(),
		Version:   apiVersion,
		Timestamp: p.now().UnixMilli(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request message: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("message", string(message)); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", img.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// ParseResponse extracts the fields of the first image in a General OCR
// response body
func ParseResponse(raw []byte) ([]providers.Field, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("malformed CLOVA OCR response: %w", err)
	}

	if len(resp.Images) == 0 {
		return nil, errors.New("CLOVA OCR response has no images")
	}

	image := resp.Images[0]
	if image.InferResult != "" && !strings.EqualFold(image.InferResult, "SUCCESS") {
		return nil, fmt.Errorf("CLOVA OCR inference %s: %s", image.InferResult, image.Message)
	}

	fields := make([]providers.Field, 0, len(image.Fields))
	for _, f := range image.Fields {
		fields = append(fields, providers.Field{
			Text:    f.InferText,
			Polygon: f.BoundingPoly.Vertices,
		})
	}

	return fields, nil
}
