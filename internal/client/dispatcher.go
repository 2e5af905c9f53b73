package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nao1215/lingoscan/internal/model"
	"github.com/nao1215/lingoscan/internal/session"
)

// BusyNotifier is told when a submission starts and ends.
type BusyNotifier interface {
	SetBusy(busy bool, text string)
}

type nopNotifier struct{}

func (nopNotifier) SetBusy(bool, string) {}

// Dispatcher submits analysis requests, one at a time.
type Dispatcher struct {
	*transport
	notifier BusyNotifier
	gate     sync.Mutex
}

// NewDispatcher creates a Dispatcher for the service at baseURL.
// notifier may be nil.
func NewDispatcher(baseURL string, notifier BusyNotifier, opts ...Option) (*Dispatcher, error) {
	t, err := newTransport(baseURL, opts)
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Dispatcher{transport: t, notifier: notifier}, nil
}

type countRequest struct {
	URLs []string `json:"urls"`
}

type crawlRequest struct {
	URL string `json:"url"`
}

// SplitURLs splits single-mode input into trimmed, non-blank lines.
func SplitURLs(input string) []string {
	var urls []string
	for _, line := range strings.Split(input, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Submit sends input to the service in the given mode and returns the
// undecoded response. Blank input fails with ErrEmptyInput and a call made
// while another is in flight fails with ErrBusy; neither touches the network.
func (d *Dispatcher) Submit(ctx context.Context, input string, mode model.Mode) (*model.RawResponse, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}

	if !d.gate.TryLock() {
		return nil, ErrBusy
	}
	defer d.gate.Unlock()

	path, body, err := buildRequest(trimmed, mode)
	if err != nil {
		return nil, err
	}

	d.notifier.SetBusy(true, session.BusyText(mode))
	defer d.notifier.SetBusy(false, "")

	d.logger.Debug("submitting", "mode", mode, "path", path)
	resp, err := d.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    detailMessage(resp.Body, DefaultFailureMessage),
		}
	}

	var raw model.RawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: %v", DefaultFailureMessage, err),
		}
	}
	return &raw, nil
}

func buildRequest(trimmed string, mode model.Mode) (string, []byte, error) {
	var (
		path    string
		payload any
	)
	switch mode {
	case model.ModeCrawl:
		path, payload = "/crawl", crawlRequest{URL: trimmed}
	case model.ModeSingle:
		path, payload = "/count", countRequest{URLs: SplitURLs(trimmed)}
	default:
		return "", nil, fmt.Errorf("%w: %q", model.ErrInvalidMode, mode)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	return path, body, nil
}
