package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"servetix/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(err error) (*httptest.ResponseRecorder, StandardApiResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/purchases", nil)
	RespondError(c, err)

	var body StandardApiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondErrorKinds(t *testing.T) {
	w, body := respond(apperror.SeatsUnavailable("only 1 seat left in Gold"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "only 1 seat left in Gold", body.Message)

	w, body = respond(apperror.InvalidField("quantity", "quantity must be positive"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"quantity": "quantity must be positive"}, body.Errors)
}

func TestRespondErrorHidesUnexpectedDetails(t *testing.T) {
	w, body := respond(errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.Nil(t, body.Errors)
}
