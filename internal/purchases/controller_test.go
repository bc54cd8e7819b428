package purchases

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"servetix/internal/shared/constants"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(f *fixture, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	if userID != "" {
		engine.Use(func(c *gin.Context) {
			c.Set(constants.CtxUserID, userID)
			c.Set(constants.CtxUserEmail, "budi@example.com")
			c.Set(constants.CtxUserName, "Budi Santoso")
			c.Set(constants.CtxUserRole, constants.RoleUser)
			c.Next()
		})
	}

	controller := NewController(f.svc)
	engine.POST("/matches/book", controller.BookByIDs)
	engine.POST("/matches/book-quantity", controller.BookQuantity)
	engine.POST("/purchases", controller.CreatePurchase)
	engine.POST("/purchases/:order_id/pay", controller.ConfirmPayment)
	engine.POST("/purchases/:order_id/cancel", controller.CancelPurchase)
	return engine
}

func postJSON(engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeReservation(t *testing.T, w *httptest.ResponseRecorder) ReservationResponse {
	t.Helper()
	var resp ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func guestBuyer() gin.H {
	return gin.H{
		"buyer_name":  "Sari Dewi",
		"buyer_email": "sari@example.com",
		"buyer_phone": "081298765432",
	}
}

func TestBookQuantity_GuestCheckout(t *testing.T) {
	f := newFixture(t)
	engine := newTestEngine(f, "")

	body := guestBuyer()
	body["match_id"] = testMatchID
	body["category_name"] = "VIP"
	body["quantity"] = 2

	w := postJSON(engine, "/matches/book-quantity", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeReservation(t, w)
	assert.True(t, resp.OK)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, int64(200000), resp.TotalPrice)
	assert.Len(t, resp.Assigned, 2)

	stored, err := f.repo.GetByOrderID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)
	assert.Equal(t, "sari@example.com", stored.BuyerEmail)
}

func TestBookQuantity_PassengerCategories(t *testing.T) {
	f := newFixture(t)
	engine := newTestEngine(f, "")

	body := guestBuyer()
	body["match_id"] = testMatchID
	body["passengers"] = []gin.H{
		{"name": "Andi", "category": "VIP"},
		{"name": "Sari", "category": "Regular"},
	}

	w := postJSON(engine, "/matches/book-quantity", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeReservation(t, w)
	assert.Equal(t, int64(150000), resp.TotalPrice)
}

func TestBookByIDs_ConflictResponse(t *testing.T) {
	f := newFixture(t)
	engine := newTestEngine(f, "")

	body := guestBuyer()
	body["match_id"] = testMatchID
	body["seat_ids"] = []uint{f.vipSeats[0].ID}
	require.Equal(t, http.StatusCreated, postJSON(engine, "/matches/book", body).Code)

	body["seat_ids"] = []uint{f.vipSeats[1].ID, f.vipSeats[0].ID}
	w := postJSON(engine, "/matches/book", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	resp := decodeReservation(t, w)
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Msg)
	assert.Equal(t, 1, f.seats.Booked(testMatchID))
}

func TestBookByIDs_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	engine := newTestEngine(f, "")

	body := guestBuyer()
	body["match_id"] = testMatchID
	body["seat_ids"] = []uint{f.vipSeats[0].ID}
	body["buyer_email"] = "sari-at-example"

	w := postJSON(engine, "/matches/book", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeReservation(t, w)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Errors, "buyer.buyer_email")

	w = postJSON(engine, "/matches/book", gin.H{"seat_ids": []uint{1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePurchase_UsesTokenIdentity(t *testing.T) {
	f := newFixture(t)
	engine := newTestEngine(f, "user-1")

	w := postJSON(engine, "/purchases", gin.H{
		"match_id":    testMatchID,
		"category_id": f.regular.ID,
		"quantity":    1,
		"buyer_phone": "081234567890",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeReservation(t, w)
	stored, err := f.repo.GetByOrderID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "user-1", *stored.UserID)
	assert.Equal(t, "Budi Santoso", stored.BuyerName)
	assert.Equal(t, int64(50000), stored.TotalPrice)
}

func TestCreatePurchase_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	engine := newTestEngine(f, "")

	w := postJSON(engine, "/purchases", gin.H{"match_id": testMatchID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConfirmAndCancelEndpoints(t *testing.T) {
	f := newFixture(t)
	p := reserveOne(t, f)
	engine := newTestEngine(f, "user-1")

	w := postJSON(engine, "/purchases/"+p.OrderID+"/pay", gin.H{"payment_method": "BRI"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(engine, "/purchases/"+p.OrderID+"/pay", gin.H{"payment_method": "QRIS"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = postJSON(engine, "/purchases/"+p.OrderID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, f.seats.Booked(testMatchID))

	w = postJSON(engine, "/purchases/"+p.OrderID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
