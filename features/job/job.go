package job

import (
	"encoding/json"
	"time"
)

// Job is a parked embedding task that exhausted its retries (or failed in a
// way that retrying cannot fix). The payload is the original NSQ message
// body, so a retry republishes it verbatim.
type Job struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Handler    string          `json:"handler"`
	Payload    json.RawMessage `json:"payload"`
	Error      string          `json:"error"`
	Retries    int             `json:"retries"`
	CreatedAt  time.Time       `json:"created_at"`
}
