package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fields struct {
	Fields map[string]string `json:"fields"`
}

func TestSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	Success(map[string]string{"token": "abc"}, http.StatusOK).Write(rr)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"token":"abc"},"error":null}`, rr.Body.String())
}

func TestError_WithDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	detail := &fields{Fields: map[string]string{"redirect_to": "invalid url"}}
	Error(detail, "invalid data from client", http.StatusBadRequest).Write(rr)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t,
		`{"data":null,"error":{"message":"invalid data from client","error":{"fields":{"redirect_to":"invalid url"}}}}`,
		rr.Body.String())
}

func TestSimpleError(t *testing.T) {
	rr := httptest.NewRecorder()
	SimpleError("user not found", http.StatusNotAcceptable).Write(rr)

	assert.Equal(t, http.StatusNotAcceptable, rr.Code)
	assert.JSONEq(t, `{"data":null,"error":{"message":"user not found","error":null}}`, rr.Body.String())
}

func TestStatusOnly(t *testing.T) {
	rr := httptest.NewRecorder()
	StatusOnly(http.StatusOK).Write(rr)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":null,"error":null}`, rr.Body.String())
}
