package model

// CompletionJob is the payload handed to the job queue for one qualifying
// mention. It is ephemeral; the core's responsibility ends at enqueue.
type CompletionJob struct {
	Channel  string `json:"channel"`
	User     string `json:"user"`
	TS       string `json:"ts"`
	Message  string `json:"message"`
	ThreadTS string `json:"thread_ts,omitempty"`
}
