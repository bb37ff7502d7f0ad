package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// Event announces a write accepted by the server.
type Event struct {
	Version int `json:"version"`
}

// Subscribe opens the server's change feed.
// The returned channel is closed when ctx is done or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	feedURL := c.FullPath("events")
	feedURL = "ws" + strings.TrimPrefix(feedURL, "http")

	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.Dial(ctx, feedURL, &websocket.DialOptions{
		HTTPClient: c.base,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode >= 300 {
			return nil, responseError(http.MethodGet, resp.StatusCode, nil)
		}
		return nil, noResponseError(fmt.Errorf("failed to open change feed: %w", err))
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer conn.Close(websocket.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
