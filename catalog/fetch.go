package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hubenschmidt/reelmatch/logging"
)

// Source describes where the dataset comes from. Path wins over URL.
type Source struct {
	URL        string
	Path       string
	Timeout    time.Duration // per attempt
	MaxRetries int
	MaxBytes   int64

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
	// InitialInterval overrides the first retry delay.
	InitialInterval time.Duration
}

const defaultMaxBytes = 64 << 20

// ErrTooLarge is returned when the dataset exceeds Source.MaxBytes.
var ErrTooLarge = errors.New("dataset exceeds size limit")

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// Load fetches and parses the dataset.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	data, err := Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Fetch returns the raw dataset bytes, retrying transient HTTP failures.
func Fetch(ctx context.Context, src Source) ([]byte, error) {
	maxBytes := src.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	if src.Path != "" {
		return readFile(src.Path, maxBytes)
	}
	if src.URL == "" {
		return nil, errors.New("dataset source has neither path nor url")
	}

	client := src.Client
	if client == nil {
		client = &http.Client{}
	}

	log := logging.With("catalog")

	b := backoff.NewExponentialBackOff()
	if src.InitialInterval > 0 {
		b.InitialInterval = src.InitialInterval
	}
	retries := src.MaxRetries
	if retries < 0 {
		retries = 0
	}

	attempt := 0
	var data []byte
	operation := func() error {
		attempt++
		body, err := fetchOnce(ctx, client, src.URL, src.Timeout, maxBytes)
		if err == nil {
			data = body
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("url", src.URL).Msg("dataset fetch failed")
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}

	log.Info().Int("bytes", len(data)).Int("attempts", attempt).Msg("dataset fetched")
	return data, nil
}

func fetchOnce(ctx context.Context, client *http.Client, url string, timeout time.Duration, maxBytes int64) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}

	return readLimited(resp.Body, maxBytes)
}

func readFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return readLimited(f, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	if errors.Is(err, ErrTooLarge) || errors.Is(err, context.Canceled) {
		return false
	}
	var pe *backoff.PermanentError
	return !errors.As(err, &pe)
}
