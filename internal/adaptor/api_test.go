package adaptor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/repository"
	"github.com/oyvindfi/bjorkvang/internal/mail"
	"github.com/oyvindfi/bjorkvang/internal/payment"
	"github.com/oyvindfi/bjorkvang/internal/wire"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

type stubGateway struct {
	state string
}

func (g *stubGateway) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.InitiateResponse, error) {
	return &payment.InitiateResponse{
		RedirectURL: "https://apitest.vipps.no/redirect/" + req.OrderID,
		OrderID:     req.OrderID,
	}, nil
}

func (g *stubGateway) Status(_ context.Context, orderID string) (*payment.StatusResponse, error) {
	return &payment.StatusResponse{State: g.state}, nil
}

func (g *stubGateway) Capture(_ context.Context, _ string, _ int64) error { return nil }

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := zap.NewNop()
	config := &utils.Config{
		App: utils.AppConfig{
			Name:           "bjorkvang-booking",
			Environment:    "development",
			PublicBaseURL:  "https://bjorkvang.no",
			AllowedOrigins: []string{"https://bjorkvang.no", "http://localhost:5500"},
		},
		Email: utils.EmailConfig{
			FromAddress: "post@bjorkvang.no",
			BoardTo:     "styret@bjorkvang.no",
		},
		Admin: utils.AdminConfig{Password: "styret2026"},
	}

	repo := repository.NewMemoryRepository(logger)
	sender := mail.NewLogSender(logger)
	gateway := &stubGateway{state: payment.StateCreated}

	return wire.Wiring(repo, sender, gateway, config, logger).Router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createBooking(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/booking", map[string]any{
		"date":           "2026-06-20",
		"time":           "18:00",
		"requesterName":  "Kari Nordmann",
		"requesterEmail": "kari@example.com",
		"spaces":         []string{"Salen"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "pending", created.Status)
	return created.ID
}

func TestCreateBookingEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("accepts a valid request", func(t *testing.T) {
		createBooking(t, router)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/booking", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an impossible date", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/booking", map[string]any{
			"date":           "2026-02-30",
			"time":           "18:00",
			"requesterName":  "Kari",
			"requesterEmail": "kari@example.com",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCalendarHidesPersonalData(t *testing.T) {
	router := newTestRouter(t)
	id := createBooking(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/booking/calendar", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, id)
	require.Contains(t, body, "2026-06-20")
	require.NotContains(t, body, "Kari Nordmann")
	require.NotContains(t, body, "kari@example.com")

	adminRec := doJSON(t, router, http.MethodGet, "/api/booking/admin", nil)
	require.Equal(t, http.StatusOK, adminRec.Code)
	require.Contains(t, adminRec.Body.String(), "kari@example.com")
}

func TestApproveAndRejectEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("email link GET answers with HTML and approves", func(t *testing.T) {
		id := createBooking(t, router)

		req := httptest.NewRequest(http.MethodGet, "/api/booking/approve?id="+id, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		require.Contains(t, rec.Body.String(), "godkjent")

		calRec := doJSON(t, router, http.MethodGet, "/api/booking/calendar", nil)
		require.Contains(t, calRec.Body.String(), `"booked"`)
	})

	t.Run("admin POST answers with JSON", func(t *testing.T) {
		id := createBooking(t, router)

		rec := doJSON(t, router, http.MethodPost, "/api/booking/reject?id="+id, map[string]any{
			"reason": "Opptatt",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})

	t.Run("missing id is a bad request", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/booking/approve", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id on an email link is an HTML 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/booking/approve?id=missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})
}

func TestSignAndContractEndpoints(t *testing.T) {
	router := newTestRouter(t)
	id := createBooking(t, router)

	sign := func(role string) *httptest.ResponseRecorder {
		return doJSON(t, router, http.MethodPost, "/api/signBooking", map[string]any{
			"id":            id,
			"role":          role,
			"signerName":    "Kari Nordmann",
			"signatureData": "data:image/png;base64,iVBORw0KGgo=",
		})
	}

	t.Run("first signature", func(t *testing.T) {
		rec := sign("requester")
		require.Equal(t, http.StatusOK, rec.Code)

		var result struct {
			BothSigned      bool `json:"bothSigned"`
			PaymentRequired bool `json:"paymentRequired"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.False(t, result.BothSigned)
		require.False(t, result.PaymentRequired)
	})

	t.Run("second signature completes the contract", func(t *testing.T) {
		rec := sign("landlord")
		require.Equal(t, http.StatusOK, rec.Code)

		var result struct {
			BothSigned      bool `json:"bothSigned"`
			PaymentRequired bool `json:"paymentRequired"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.True(t, result.BothSigned)
		require.True(t, result.PaymentRequired)
	})

	t.Run("getBooking returns the signed record", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/getBooking?id="+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"landlord"`)
	})

	t.Run("contract renders as PDF", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/booking/contract?id="+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})
}

func TestVerifyAdminEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("correct password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/verify-admin", map[string]any{
			"password": "styret2026",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/verify-admin", map[string]any{
			"password": "feil",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/verify-admin", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVippsEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("initiate booking payment", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/vipps/initiate-booking", map[string]any{
			"spaces":        []string{"Peisestue"},
			"date":          "2026-06-20",
			"time":          "18:00",
			"requesterName": "Kari",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			URL     string `json:"url"`
			OrderID string `json:"orderId"`
			Amount  int64  `json:"amount"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, int64(1500), resp.Amount)
		require.Contains(t, resp.URL, resp.OrderID)
	})

	t.Run("check status", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/vipps/check-status", map[string]any{
			"orderId": "order-1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), payment.StateCreated)
	})

	t.Run("provider callback is acknowledged", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/vipps/callback/v2/payments/order-1", map[string]any{
			"transactionInfo": map[string]any{"status": "RESERVED"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t)

	t.Run("allowed origin gets the headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/booking", nil)
		req.Header.Set("Origin", "https://bjorkvang.no")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "https://bjorkvang.no", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/booking", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Status string   `json:"status"`
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Contains(t, health.Routes, "POST /api/booking")
}
