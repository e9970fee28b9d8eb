package types

import "time"

type LogEntry struct {
	Step      string `json:"step"`
	Content   any    `json:"content"`
	Prompt    string `json:"prompt,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Logs is the per-turn debug trail returned to the client. It is never
// read back by the pipeline.
type Logs []LogEntry

func (l *Logs) Add(step string, content any, prompt string) {
	*l = append(*l, LogEntry{
		Step:      step,
		Content:   content,
		Prompt:    prompt,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	})
}
