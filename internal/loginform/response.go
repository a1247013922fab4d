package loginform

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// loginResponse is the expected response body. Every field is optional.
type loginResponse struct {
	Message *string `json:"message,omitempty"`

	// Null is set when the body is the JSON literal null
	Null bool `json:"-"`
}

// message returns the server message, or "" when absent
func (r loginResponse) message() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}

// decodeResponse parses a response body. Any valid JSON value is accepted;
// only an object carrying a string "message" yields a message. Non-string
// messages such as {"message":42} are dropped, where a browser would show "42".
func decodeResponse(body []byte) (loginResponse, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return loginResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return loginResponse{Null: true}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// null, arrays, strings and numbers carry no message
		return loginResponse{}, nil
	}

	var out loginResponse
	if m, ok := obj["message"]; ok {
		var s string
		if err := json.Unmarshal(m, &s); err == nil {
			out.Message = &s
		}
	}
	return out, nil
}
