// Package messengertest provides an in-memory messenger.Sender for tests.
package messengertest

import (
	"context"
	"sync"

	"order-bot/internal/messenger"
)

// Answer is a recorded callback acknowledgment
type Answer struct {
	CallbackID string
	Text       string
}

// Recorder records every message and answer it is asked to deliver.
// Setting Err makes every call fail after being recorded.
type Recorder struct {
	mu       sync.Mutex
	Messages []messenger.Message
	Answers  []Answer
	Err      error
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(ctx context.Context, msg messenger.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
	return r.Err
}

func (r *Recorder) Answer(ctx context.Context, callbackID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Answers = append(r.Answers, Answer{CallbackID: callbackID, Text: text})
	return r.Err
}

// Sent returns a copy of the recorded messages
func (r *Recorder) Sent() []messenger.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]messenger.Message(nil), r.Messages...)
}

// Answered returns a copy of the recorded answers
func (r *Recorder) Answered() []Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Answer(nil), r.Answers...)
}

// Last returns the most recent message, or false when nothing was sent
func (r *Recorder) Last() (messenger.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return messenger.Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// Reset forgets everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = nil
	r.Answers = nil
}
