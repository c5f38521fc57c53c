package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category FailureCategory
	}{
		{"gmail 535", errors.New("535 5.7.8 Username and Password not accepted"), FailureAuth},
		{"auth failed", errors.New("SMTP authentication failed"), FailureAuth},
		{"invalid credentials", errors.New("invalid credentials"), FailureAuth},
		{"connection refused", errors.New("dial tcp 127.0.0.1:587: connection refused"), FailureNetwork},
		{"no such host", errors.New("dial tcp: lookup smtp.example.com: no such host"), FailureNetwork},
		{"timeout", errors.New("i/o timeout"), FailureTimeout},
		{"deadline", errors.New("context deadline exceeded"), FailureTimeout},
		{"unknown", errors.New("553 relaying denied"), FailureOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sendErr := Classify(tc.err)
			assert.Equal(t, tc.category, sendErr.Category)
			assert.Equal(t, tc.err.Error(), sendErr.Detail)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyPassthrough(t *testing.T) {
	orig := &SendError{Category: FailureAuth, Detail: "rejected"}
	assert.Same(t, orig, Classify(orig))
}
