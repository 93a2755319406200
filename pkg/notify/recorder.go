package notify

import "sync"

// Toast is a recorded notification
type Toast struct {
	Severity Severity
	Message  string
}

// Recorder keeps notifications in memory and answers confirmations with a fixed value
type Recorder struct {
	mu      sync.Mutex
	Toasts  []Toast
	Prompts []string
	Answer  bool
}

// Notify records the toast
func (r *Recorder) Notify(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Toasts = append(r.Toasts, Toast{Severity: severity, Message: message})
}

// Confirm records the prompt and returns Answer
func (r *Recorder) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, prompt)
	return r.Answer
}
