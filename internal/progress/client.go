package progress

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"RegCollector/internal/domain"
)

// Follow connects to a job's progress websocket and folds every event into
// the tracker until the stream's terminal event or the connection closing.
// With backlog true the server replays buffered history first.
func Follow(ctx context.Context, tracker *Tracker, endpoint, jobID string, backlog bool) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/auto-collect/progress/" + jobID
	if backlog {
		u.RawQuery = "backlog=1"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial progress stream: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event domain.ProgressEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read progress event: %w", err)
		}
		tracker.Apply(event)
		if event.Terminal() {
			return nil
		}
	}
}
