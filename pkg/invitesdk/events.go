package invitesdk

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// EventStream is an open subscription to an organization's invitation
// changes. Events is closed when the stream ends; Err then reports why.
type EventStream struct {
	Events <-chan ChangeEvent

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Subscribe opens the organization's change stream. The caller MUST Close
// the returned stream.
func (c *Client) Subscribe(ctx context.Context, orgID string) (*EventStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := c.newRequest(ctx, http.MethodGet, orgPath(orgID, "/events"), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	hc := c.StreamClient
	if hc == nil {
		hc = &http.Client{Transport: c.HTTPClient.Transport}
	}

	resp, err := hc.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, body)
	}

	ch := make(chan ChangeEvent, 16)
	s := &EventStream{Events: ch, cancel: cancel, done: make(chan struct{})}
	go s.read(ctx, resp.Body, ch)
	return s, nil
}

func (s *EventStream) read(ctx context.Context, body io.ReadCloser, ch chan<- ChangeEvent) {
	defer close(s.done)
	defer close(ch)
	defer body.Close()

	var data strings.Builder
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			// Dispatch on blank line.
			if data.Len() == 0 {
				continue
			}
			var ev ChangeEvent
			err := json.Unmarshal([]byte(data.String()), &ev)
			data.Reset()
			if err != nil {
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		case strings.HasPrefix(line, ":"):
			// comment / heartbeat
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := sc.Err(); err != nil && ctx.Err() == nil {
		s.setErr(err)
	} else if ctx.Err() == nil {
		s.setErr(io.EOF)
	}
}

func (s *EventStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Err reports why the stream ended: io.EOF when the server closed it, nil
// after Close.
func (s *EventStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the stream and waits for the reader to exit.
func (s *EventStream) Close() {
	s.cancel()
	<-s.done
}
