package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrDeadLetterFailed means the message could be neither handled nor parked
var ErrDeadLetterFailed = errors.New("failed to publish to dead-letter topic")

// DeadLetter is a message that exhausted its retries
type DeadLetter struct {
	OriginalTopic string            `json:"original_topic"`
	Key           string            `json:"key"`
	Payload       json.RawMessage   `json:"payload"`
	Headers       map[string]string `json:"headers,omitempty"`
	Error         string            `json:"error"`
	Attempts      int               `json:"attempts"`
	FailedAt      time.Time         `json:"failed_at"`
	Source        string            `json:"source"`
}

// JSONProducer publishes a JSON document to a topic
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error
}

// DeadLetterTopic returns the dead-letter topic for topic
func DeadLetterTopic(topic string) string {
	return topic + ".dlq"
}

// DLQHandler retries an operation and parks the message on failure
type DLQHandler struct {
	retrier  *Retrier
	producer JSONProducer
	source   string
	onDead   func(*DeadLetter)
}

// NewDLQHandler creates a DLQHandler. producer may be nil to only report via onDead.
func NewDLQHandler(cfg *Config, producer JSONProducer, source string, onDead func(*DeadLetter)) *DLQHandler {
	return &DLQHandler{
		retrier:  New(cfg),
		producer: producer,
		source:   source,
		onDead:   onDead,
	}
}

// Process runs op with retries. When every attempt fails the payload is sent to
// the dead-letter topic and the operation error is returned. If the dead letter
// cannot be published the error wraps ErrDeadLetterFailed and the message must
// not be acknowledged.
func (h *DLQHandler) Process(ctx context.Context, topic, key string, payload []byte, headers map[string]string, op Operation) error {
	res := h.retrier.Do(ctx, op)
	if res.Err == nil {
		return nil
	}
	if errors.Is(res.Err, ErrContextCanceled) {
		return res.Err
	}

	cause := res.Err
	if res.LastError != nil {
		cause = res.LastError
	}

	dead := &DeadLetter{
		OriginalTopic: topic,
		Key:           key,
		Payload:       payload,
		Headers:       headers,
		Error:         cause.Error(),
		Attempts:      res.Attempts,
		FailedAt:      time.Now(),
		Source:        h.source,
	}
	if !json.Valid(payload) {
		dead.Payload = nil
	}

	if h.producer != nil {
		dlqHeaders := map[string]string{
			"original_topic": topic,
			"attempts":       strconv.Itoa(res.Attempts),
			"source":         h.source,
		}
		if err := h.producer.ProduceJSON(ctx, DeadLetterTopic(topic), key, dead, dlqHeaders); err != nil {
			return fmt.Errorf("%w: %v (cause: %v)", ErrDeadLetterFailed, err, cause)
		}
	}

	if h.onDead != nil {
		h.onDead(dead)
	}

	return cause
}
