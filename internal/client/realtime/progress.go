package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/poputchiki/internal/client/dom"
)

const TypeProgress = "progressmessage"

type ProgressBody struct {
	ID       string  `json:"id,omitempty"`
	Progress float64 `json:"progress"`
}

// ProgressHandler moves bar to the reported percentage, clamped to 0..100.
func ProgressHandler(bar dom.Progress) Handler {
	return func(_ context.Context, msg Message) error {
		var body ProgressBody
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return fmt.Errorf("decode progress: %w", err)
		}
		p := body.Progress
		if p < 0 {
			p = 0
		} else if p > 100 {
			p = 100
		}
		bar.Set(p)
		return nil
	}
}
