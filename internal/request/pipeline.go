package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"

	"github.com/corvidlabs/tbot/apierr"
	"github.com/corvidlabs/tbot/internal/util/logging"
	"github.com/corvidlabs/tbot/internal/wire"
)

const (
	cloudAPIURL = "https://api.telegram.org"

	defaultTimeout = 30 * time.Second
	maxTimeoutCap  = 60 * time.Second
	timeoutStep    = 10 * time.Second

	defaultMaxRetries            = 5
	defaultMaxConcurrentRequests = 50
)

// cloudOnlyMethods always dispatch to the cloud endpoint regardless of the configured base URL.
// Per spec §9's open question, only logOut is special-cased; whether other methods should join
// this set is left open, so the set stays exactly as the source documents it.
//
//nolint:gochecknoglobals // Immutable set.
var cloudOnlyMethods = map[string]struct{}{"logOut": {}}

// Pipeline implements the request pipeline from spec §4.3: it owns the shared HTTP client, the
// request-rate semaphore, and the retry/backoff policy. It is constructed once per Bot and
// opened/closed alongside the polling driver's lifecycle.
type Pipeline struct {
	httpClient *http.Client
	sem        *semaphore.Weighted

	baseAPIURL     string
	token          string
	maxRetries     int
	defaultTimeout time.Duration
	maxTimeout     time.Duration
}

// Config bundles the tunables from spec §6's Configuration surface that apply to the pipeline.
type Config struct {
	BaseAPIURL            string
	MaxConcurrentRequests int64
	MaxRetries            int
	DefaultTimeout        time.Duration
	MaxTimeout            time.Duration
}

// NewPipeline builds an unopened Pipeline; call Open before the first Do.
func NewPipeline(token string, cfg Config) *Pipeline {
	if cfg.BaseAPIURL == "" {
		cfg.BaseAPIURL = cloudAPIURL
	}

	if cfg.MaxConcurrentRequests == 0 {
		cfg.MaxConcurrentRequests = defaultMaxConcurrentRequests
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = defaultTimeout
	}

	if cfg.MaxTimeout == 0 {
		cfg.MaxTimeout = maxTimeoutCap
	}

	return &Pipeline{
		sem:            semaphore.NewWeighted(cfg.MaxConcurrentRequests),
		baseAPIURL:     cfg.BaseAPIURL,
		token:          token,
		maxRetries:     cfg.MaxRetries,
		defaultTimeout: cfg.DefaultTimeout,
		maxTimeout:     cfg.MaxTimeout,
	}
}

// Open creates the one shared HTTP client for the bot's lifetime. Do fails with
// apierr.ErrClientNotInitialized until this has been called.
func (p *Pipeline) Open() {
	p.httpClient = &http.Client{}
}

// Close releases the shared HTTP client's idle connections.
func (p *Pipeline) Close() {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}

	p.httpClient = nil
}

// HTTPClient exposes the shared client for the download builder, which streams file bytes
// outside the JSON request/response shape Do assumes.
func (p *Pipeline) HTTPClient() *http.Client {
	return p.httpClient
}

func (p *Pipeline) url(method string) string {
	base := p.baseAPIURL
	if _, cloudOnly := cloudOnlyMethods[method]; cloudOnly {
		base = cloudAPIURL
	}

	return base + "/bot" + p.token + "/" + method
}

// Do executes desc per spec §4.3's ten steps and returns the converted result (or the result
// decoded into a generic any value if convert is nil).
func (p *Pipeline) Do(
	ctx context.Context, desc wire.RequestDescriptor, convert func(json.RawMessage) (any, error),
) (any, error) {
	if p.httpClient == nil {
		return nil, apierr.ErrClientNotInitialized
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring request slot: %w", err)
	}
	defer p.sem.Release(1)

	params, files, err := StageFiles(desc.Params, desc.FileParams, desc.MediaParams)
	if err != nil {
		return p.settle(err, desc.CatchErrors)
	}

	body, contentType, err := encodeBody(params, files)
	if err != nil {
		return p.settle(&apierr.InvalidParamsError{Msg: err.Error()}, desc.CatchErrors)
	}

	timeout := p.defaultTimeout
	if desc.Timeout > 0 {
		timeout = time.Duration(desc.Timeout) * time.Second
	}

	netBackoff := backoff.NewExponentialBackOff()
	netBackoff.Multiplier = 2
	netBackoff.RandomizationFactor = 0
	netBackoff.InitialInterval = time.Second

	var lastErr error

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		result, retryDelay, done, err := p.attempt(ctx, desc.MethodName, body, contentType, timeout, convert)
		if done {
			if err != nil {
				return p.settle(err, desc.CatchErrors)
			}

			return result, nil
		}

		lastErr = err

		if retryDelay > 0 {
			time.Sleep(retryDelay)
		} else {
			time.Sleep(netBackoff.NextBackOff())

			if timeout < p.maxTimeout {
				timeout += timeoutStep
				if timeout > p.maxTimeout {
					timeout = p.maxTimeout
				}
			}
		}
	}

	return p.settle(&apierr.MaxRetriesExceededError{Attempts: p.maxRetries, LastError: lastErr}, desc.CatchErrors)
}

// attempt runs one HTTP round trip. done=true means the caller should stop retrying (either a
// terminal success or a non-retryable failure); retryDelay, when positive, is the
// classification-specified sleep for a retryable Telegram error (as opposed to a network-layer
// failure, signalled by retryDelay=0 and done=false).
func (p *Pipeline) attempt(
	ctx context.Context, method string, body []byte, contentType string, timeout time.Duration,
	convert func(json.RawMessage) (any, error),
) (result any, retryDelay time.Duration, done bool, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.url(method), bytes.NewReader(body))
	if err != nil {
		return nil, 0, true, fmt.Errorf("building request to %s: %w", method, err)
	}

	req.Header.Set("Content-Type", contentType)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, false, fmt.Errorf("network error calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, false, fmt.Errorf("reading response body from %s: %w", method, err)
	}

	var apiResp wire.APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, 0, true, fmt.Errorf("parsing JSON response from %s: %w", method, err)
	}

	if !apiResp.Ok {
		classified := apierr.Classify(resp.StatusCode, apiResp)
		logging.RequestFailure(method, resp.StatusCode, classified.Description, classified.RetryAfterSec)

		if classified.Retryable {
			return nil, time.Duration(classified.RetryAfterSec) * time.Second, false, classified
		}

		return nil, 0, true, classified
	}

	if convert == nil {
		var generic any

		if len(apiResp.Result) > 0 {
			if err := json.Unmarshal(apiResp.Result, &generic); err != nil {
				return nil, 0, true, &apierr.ResultConversionError{Cause: err}
			}
		}

		return generic, 0, true, nil
	}

	converted, err := convert(apiResp.Result)
	if err != nil {
		return nil, 0, true, &apierr.ResultConversionError{Cause: err}
	}

	return converted, 0, true, nil
}

// settle applies the CatchErrors policy from spec §4.3: catch (log + swallow), or propagate.
// A critical *apierr.TelegramError always propagates, whatever catchErrors says. Critical statuses
// are not retryable, so they reach settle unwrapped. apierr.ErrClientNotInitialized never reaches
// settle: Do returns it directly, so it always propagates too.
func (p *Pipeline) settle(err error, catchErrors bool) (any, error) {
	var classified *apierr.TelegramError
	if asClassified, ok := err.(*apierr.TelegramError); ok {
		classified = asClassified
	}

	if classified != nil && classified.Critical {
		return nil, err
	}

	logging.Errorf("%s", err)

	if catchErrors {
		return nil, nil
	}

	return nil, err
}

// encodeBody builds either a multipart/form-data body (when files is non-empty) or an
// application/x-www-form-urlencoded body, per spec §4.3 step 3-4: structured values are
// JSON-serialized, null-valued keys are dropped.
func encodeBody(params map[string]any, files map[string]StagedFile) ([]byte, string, error) {
	if len(files) > 0 {
		return encodeMultipart(params, files)
	}

	return encodeURLEncoded(params)
}

func encodeMultipart(params map[string]any, files map[string]StagedFile) ([]byte, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for key, value := range params {
		if value == nil {
			continue
		}

		str, err := stringifyParam(value)
		if err != nil {
			return nil, "", err
		}

		if err := w.WriteField(key, str); err != nil {
			return nil, "", err
		}
	}

	for name, file := range files {
		part, err := w.CreateFormFile(name, file.Filename)
		if err != nil {
			return nil, "", err
		}

		if _, err := part.Write(file.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func encodeURLEncoded(params map[string]any) ([]byte, string, error) {
	values := url.Values{}

	for key, value := range params {
		if value == nil {
			continue
		}

		str, err := stringifyParam(value)
		if err != nil {
			return nil, "", err
		}

		values.Set(key, str)
	}

	return []byte(values.Encode()), "application/x-www-form-urlencoded", nil
}

func stringifyParam(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "true", nil
		}

		return "false", nil
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("JSON-encoding param: %w", err)
		}

		return string(encoded), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encoding param: %w", err)
		}

		// Strings already handled above; anything else that marshals to a quoted JSON string
		// (time.Time, etc.) would double-quote, so fall back to fmt for scalars.
		if len(encoded) > 0 && encoded[0] == '"' {
			return fmt.Sprintf("%v", v), nil
		}

		return string(encoded), nil
	}
}
