package modal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	fnTrain    = "train"
	fnGenerate = "generate"

	trainWebhookPath = "/modal/webhook/train"
	imageWebhookPath = "/modal/webhook/image"
)

// Options configures the Modal client.
type Options struct {
	// BaseURL is the account/app prefix, e.g. "https://acme--pixgen-gpu".
	BaseURL string
	// WebhookBaseURL is this service's public address; Modal calls back on
	// it when a job reaches a terminal state.
	WebhookBaseURL string
	// Dev selects the "-dev" endpoint variants served by `modal serve`.
	Dev        bool
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client submits training and generation jobs to Modal web endpoints. The
// synchronous response only acknowledges acceptance; results arrive later on
// the webhook. The client never touches stored job state.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	webhookBaseURL string
	envSuffix      string
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	suffix := ""
	if opts.Dev {
		suffix = "-dev"
	}
	return &Client{
		httpClient:     client,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		webhookBaseURL: strings.TrimRight(opts.WebhookBaseURL, "/"),
		envSuffix:      suffix,
	}
}

// EndpointURL builds the full Modal web endpoint address for a function name.
// Modal pattern: https://{user}--{app}-{function}[-dev].modal.run
func (c *Client) EndpointURL(fn string) string {
	return fmt.Sprintf("%s-%s%s.modal.run", c.baseURL, fn, c.envSuffix)
}

type trainPayload struct {
	ZipURL      string `json:"zipUrl"`
	TriggerWord string `json:"triggerWord"`
	ModelID     string `json:"modelId"`
	WebhookURL  string `json:"webhookUrl"`
}

type generatePayload struct {
	Prompt     string `json:"prompt"`
	ModelID    string `json:"modelId"`
	ImageID    string `json:"imageId"`
	WebhookURL string `json:"webhookUrl"`
}

// SubmitTraining asks Modal to start a training run. The model id rides along
// in the payload and comes back on the webhook as the correlation id.
func (c *Client) SubmitTraining(ctx context.Context, zipURL, triggerWord, modelID string) error {
	return c.post(ctx, fnTrain, trainPayload{
		ZipURL:      zipURL,
		TriggerWord: triggerWord,
		ModelID:     modelID,
		WebhookURL:  c.webhookBaseURL + trainWebhookPath,
	})
}

// SubmitGeneration asks Modal to render one image with the given model.
func (c *Client) SubmitGeneration(ctx context.Context, prompt, modelID, imageID string) error {
	return c.post(ctx, fnGenerate, generatePayload{
		Prompt:     prompt,
		ModelID:    modelID,
		ImageID:    imageID,
		WebhookURL: c.webhookBaseURL + imageWebhookPath,
	})
}

func (c *Client) post(ctx context.Context, fn string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("modal: encode %s payload: %w", fn, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.EndpointURL(fn), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("modal: build %s request: %w", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("modal: %s request: %w", fn, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("modal: %s dispatch rejected: http %d", fn, resp.StatusCode)
	}
	return nil
}
