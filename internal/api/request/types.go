package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MaxBodyBytes bounds every request body
const MaxBodyBytes = 1 << 16

// MMR accepts either a JSON number or a string holding an integer
type MMR int

// UnmarshalJSON implements json.Unmarshaler
func (m *MMR) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return fmt.Errorf("mmr must be an integer, got %s", data)
	}
	*m = MMR(n)
	return nil
}

// CreateAccountRequest is the request body for creating an account
type CreateAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Region   string `json:"region"`
	MMR      *MMR   `json:"mmr"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EnqueueRequest is the request body for joining a matchmaking queue
type EnqueueRequest struct {
	Kind string `json:"kind"`
}

// Decode reads a single JSON object from body into dst.
// Unknown fields and trailing data are rejected.
func Decode(body io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
