package httpx

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	assert.NoError(t, DecodeJSON(strings.NewReader(`{"name":"Suraj"}`), &v))
	assert.Equal(t, "Suraj", v.Name)

	assert.Error(t, DecodeJSON(strings.NewReader(`{"name":"a","status":"replied"}`), &v), "unknown fields are rejected")
	assert.Error(t, DecodeJSON(strings.NewReader(`{"name":"a"}{"name":"b"}`), &v))
	assert.Error(t, DecodeJSON(strings.NewReader(`not json`), &v))
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", BearerToken(r))

	r.Header.Set("Authorization", "bearer  xyz ")
	assert.Equal(t, "xyz", BearerToken(r))

	r.Header.Set("Authorization", "Basic Zm9v")
	assert.Equal(t, "", BearerToken(r))
}
