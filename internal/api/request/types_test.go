package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMMRAcceptsNumberOrNumericString(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"mmr": 1000}`, 1000},
		{`{"mmr": "1000"}`, 1000},
		{`{"mmr": " 42 "}`, 42},
		{`{"mmr": 0}`, 0},
		{`{"mmr": -5}`, -5},
	}

	for _, tt := range tests {
		var req CreateAccountRequest
		require.NoError(t, Decode(strings.NewReader(tt.body), &req), tt.body)
		require.NotNil(t, req.MMR)
		assert.Equal(t, tt.want, int(*req.MMR))
	}
}

func TestMMRRejectsNonNumeric(t *testing.T) {
	for _, body := range []string{
		`{"mmr": "abc"}`,
		`{"mmr": 10.5}`,
		`{"mmr": "10.5"}`,
		`{"mmr": true}`,
		`{"mmr": ""}`,
		`{"mmr": 99999999999}`,
	} {
		var req CreateAccountRequest
		assert.Error(t, Decode(strings.NewReader(body), &req), body)
	}
}

func TestMMRMissingIsNil(t *testing.T) {
	var req CreateAccountRequest
	require.NoError(t, Decode(strings.NewReader(`{"username":"alice"}`), &req))
	assert.Nil(t, req.MMR)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var req CreateAccountRequest
	err := Decode(strings.NewReader(`{"username":"alice","is_admin":true}`), &req)
	assert.Error(t, err)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	var req LoginRequest
	err := Decode(strings.NewReader(`{"username":"alice"} {"username":"bob"}`), &req)
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	var req LoginRequest
	assert.Error(t, Decode(strings.NewReader(`{"username":`), &req))
	assert.Error(t, Decode(strings.NewReader(``), &req))
}
