package email

import (
	"context"
	"fmt"
	"strings"
)

// Service sends mail. It always returns a result; transport faults come
// back as a *SendError so callers can classify them for the alert log.
type Service interface {
	Send(ctx context.Context, msg *Message) error
}

// Message is one outbound email.
type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// FailureCategory buckets delivery failures for operator display. The
// classification is cosmetic; behavior does not branch on it.
type FailureCategory string

const (
	FailureAuth    FailureCategory = "authentication"
	FailureNetwork FailureCategory = "network"
	FailureTimeout FailureCategory = "timeout"
	FailureOther   FailureCategory = "other"
)

// SendError is a classified delivery failure.
type SendError struct {
	Category FailureCategory
	Detail   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail delivery failed (%s): %s", e.Category, e.Detail)
}

// Classify wraps a raw transport error into a SendError. The heuristics
// cover the usual SMTP suspects: rejected credentials (including the
// Gmail 535 response), unreachable hosts and timeouts.
func Classify(err error) *SendError {
	if err == nil {
		return nil
	}

	if sendErr, ok := err.(*SendError); ok {
		return sendErr
	}

	detail := err.Error()
	lower := strings.ToLower(detail)

	switch {
	case strings.Contains(detail, "535"),
		strings.Contains(lower, "username and password not accepted"),
		strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "invalid credentials"):
		return &SendError{Category: FailureAuth, Detail: detail}
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "deadline exceeded"):
		return &SendError{Category: FailureTimeout, Detail: detail}
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "broken pipe"):
		return &SendError{Category: FailureNetwork, Detail: detail}
	default:
		return &SendError{Category: FailureOther, Detail: detail}
	}
}
