package loginform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantHas     bool
		wantNull    bool
		wantErr     bool
	}{
		{"empty object", `{}`, "", false, false, false},
		{"message present", `{"message":"Invalid credentials"}`, "Invalid credentials", true, false, false},
		{"empty message", `{"message":""}`, "", true, false, false},
		{"message not a string", `{"message":{"text":"x"}}`, "", false, false, false},
		{"numeric message", `{"message":42}`, "", false, false, false},
		{"null body", `null`, "", false, true, false},
		{"padded null body", " null\n", "", false, true, false},
		{"array body", `[1,2]`, "", false, false, false},
		{"extra fields", `{"message":"m","token":"t"}`, "m", true, false, false},
		{"empty body", ``, "", false, false, true},
		{"html body", `<html></html>`, "", false, false, true},
		{"truncated json", `{"message":`, "", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeResponse([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHas, got.Message != nil)
			assert.Equal(t, tt.wantNull, got.Null)
			assert.Equal(t, tt.wantMessage, got.message())
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		resp    *Response
		err     error
		want    Outcome
		wantMsg string
	}{
		{"error wins", &Response{StatusCode: 200}, ErrTransport, OutcomeFailure, MessageServerError},
		{"nil response", nil, nil, OutcomeFailure, MessageServerError},
		{"204", &Response{StatusCode: 204}, nil, OutcomeSuccess, MessageSuccess},
		{"299", &Response{StatusCode: 299, Message: "x", HasMessage: true}, nil, OutcomeSuccess, MessageSuccess},
		{"300", &Response{StatusCode: 300}, nil, OutcomeFailure, MessageFailed},
		{"403 message", &Response{StatusCode: 403, Message: "Forbidden", HasMessage: true}, nil, OutcomeFailure, "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.resp, tt.err)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}
