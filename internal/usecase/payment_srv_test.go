package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/internal/dto/request"
	"github.com/oyvindfi/bjorkvang/internal/payment"
)

type fakeGateway struct {
	initiated []payment.InitiateRequest
	state     string
	err       error
	captured  []string
}

func (f *fakeGateway) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.InitiateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.initiated = append(f.initiated, req)
	return &payment.InitiateResponse{
		RedirectURL: "https://apitest.vipps.no/redirect/" + req.OrderID,
		OrderID:     req.OrderID,
	}, nil
}

func (f *fakeGateway) Status(_ context.Context, orderID string) (*payment.StatusResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &payment.StatusResponse{State: f.state}, nil
}

func (f *fakeGateway) Capture(_ context.Context, orderID string, _ int64) error {
	f.captured = append(f.captured, orderID)
	return nil
}

func newTestPaymentService(t *testing.T) (*paymentService, *bookingService, *fakeGateway) {
	t.Helper()
	bookingSvc, _, _ := newTestService(t)
	gateway := &fakeGateway{state: payment.StateCreated}
	svc := &paymentService{
		booking: bookingSvc,
		gateway: gateway,
		config:  bookingSvc.config,
		log:     zap.NewNop(),
	}
	return svc, bookingSvc, gateway
}

func TestInitiateBooking(t *testing.T) {
	t.Run("prices the selected spaces and starts payment", func(t *testing.T) {
		svc, _, gateway := newTestPaymentService(t)

		resp, err := svc.InitiateBooking(context.Background(), &request.VippsInitiateBookingRequest{
			PhoneNumber:   "41234567",
			Spaces:        []string{"Peisestue"},
			Date:          "2026-06-20",
			Time:          "18:00",
			RequesterName: "Kari Nordmann",
		})
		require.NoError(t, err)
		require.Equal(t, int64(1500), resp.AmountNOK)
		require.NotEmpty(t, resp.OrderID)
		require.Contains(t, resp.URL, resp.OrderID)

		require.Len(t, gateway.initiated, 1)
		require.Equal(t, int64(150000), gateway.initiated[0].AmountMinor)
		require.Equal(t, "41234567", gateway.initiated[0].PhoneNumber)
	})

	t.Run("rejects unpriced space selections", func(t *testing.T) {
		svc, _, _ := newTestPaymentService(t)

		_, err := svc.InitiateBooking(context.Background(), &request.VippsInitiateBookingRequest{
			Spaces:        []string{"Ukjent rom"},
			Date:          "2026-06-20",
			Time:          "18:00",
			RequesterName: "Kari",
		})
		require.True(t, domain.IsValidation(err))
	})

	t.Run("surfaces provider failures", func(t *testing.T) {
		svc, _, gateway := newTestPaymentService(t)
		gateway.err = domain.PaymentError{Op: "initiate", StatusCode: 500}

		_, err := svc.InitiateBooking(context.Background(), &request.VippsInitiateBookingRequest{
			Spaces:        []string{"Salen"},
			Date:          "2026-06-20",
			Time:          "18:00",
			RequesterName: "Kari",
		})
		require.True(t, domain.IsPayment(err))
	})
}

func TestCheckStatus(t *testing.T) {
	t.Run("captured payment marks the booking paid", func(t *testing.T) {
		svc, bookingSvc, gateway := newTestPaymentService(t)
		gateway.state = payment.StateCaptured

		booking, err := bookingSvc.CreateBooking(context.Background(), validCreateRequest())
		require.NoError(t, err)

		resp, err := svc.CheckStatus(context.Background(), &request.VippsCheckStatusRequest{
			OrderID:   "order-1",
			BookingID: booking.ID,
		})
		require.NoError(t, err)
		require.Equal(t, payment.StateCaptured, resp.Status)

		updated, err := bookingSvc.GetBooking(context.Background(), booking.ID)
		require.NoError(t, err)
		require.Equal(t, entity.PaymentPaid, updated.PaymentStatus)
		require.Equal(t, entity.StatusApproved, updated.Status, "payment resolves the pending approval")
	})

	t.Run("created payment changes nothing", func(t *testing.T) {
		svc, bookingSvc, gateway := newTestPaymentService(t)
		gateway.state = payment.StateCreated

		booking, err := bookingSvc.CreateBooking(context.Background(), validCreateRequest())
		require.NoError(t, err)

		resp, err := svc.CheckStatus(context.Background(), &request.VippsCheckStatusRequest{
			OrderID:   "order-1",
			BookingID: booking.ID,
		})
		require.NoError(t, err)
		require.Equal(t, payment.StateCreated, resp.Status)

		updated, err := bookingSvc.GetBooking(context.Background(), booking.ID)
		require.NoError(t, err)
		require.Equal(t, entity.PaymentUnpaid, updated.PaymentStatus)
	})

	t.Run("tolerates an unknown booking id", func(t *testing.T) {
		svc, _, gateway := newTestPaymentService(t)
		gateway.state = payment.StateCaptured

		resp, err := svc.CheckStatus(context.Background(), &request.VippsCheckStatusRequest{
			OrderID:   "order-1",
			BookingID: "missing",
		})
		require.NoError(t, err, "a stale return URL must not fail the status poll")
		require.Equal(t, payment.StateCaptured, resp.Status)
	})
}

func TestInitiateContractPayment(t *testing.T) {
	signBoth := func(t *testing.T, svc *bookingService, id string) {
		t.Helper()
		for _, role := range []string{"requester", "landlord"} {
			_, err := svc.RecordSignature(context.Background(), &request.SignBookingRequest{
				ID:            id,
				Role:          role,
				SignerName:    "Test",
				SignatureData: "data:image/png;base64,x",
			}, SignatureMetadata{})
			require.NoError(t, err)
		}
	}

	t.Run("uses the amount stored at creation", func(t *testing.T) {
		svc, bookingSvc, gateway := newTestPaymentService(t)

		booking, err := bookingSvc.CreateBooking(context.Background(), validCreateRequest())
		require.NoError(t, err)
		signBoth(t, bookingSvc, booking.ID)

		resp, err := svc.InitiateContractPayment(context.Background(), &request.VippsContractPaymentRequest{
			BookingID: booking.ID,
		})
		require.NoError(t, err)
		require.Equal(t, int64(3000), resp.AmountNOK)
		require.Equal(t, booking.ID, resp.BookingID)
		require.Contains(t, resp.OrderID, "contract-payment-"+booking.ID)

		require.Len(t, gateway.initiated, 1)
		require.Equal(t, int64(300000), gateway.initiated[0].AmountMinor)
	})

	t.Run("requires a fully signed contract", func(t *testing.T) {
		svc, bookingSvc, _ := newTestPaymentService(t)

		booking, err := bookingSvc.CreateBooking(context.Background(), validCreateRequest())
		require.NoError(t, err)

		_, err = svc.InitiateContractPayment(context.Background(), &request.VippsContractPaymentRequest{
			BookingID: booking.ID,
		})
		require.True(t, domain.IsValidation(err))
	})

	t.Run("refuses a second payment", func(t *testing.T) {
		svc, bookingSvc, _ := newTestPaymentService(t)

		booking, err := bookingSvc.CreateBooking(context.Background(), validCreateRequest())
		require.NoError(t, err)
		signBoth(t, bookingSvc, booking.ID)
		_, err = bookingSvc.MarkPaid(context.Background(), booking.ID, "order-1")
		require.NoError(t, err)

		_, err = svc.InitiateContractPayment(context.Background(), &request.VippsContractPaymentRequest{
			BookingID: booking.ID,
		})
		require.True(t, domain.IsValidation(err))
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		svc, _, _ := newTestPaymentService(t)

		_, err := svc.InitiateContractPayment(context.Background(), &request.VippsContractPaymentRequest{
			BookingID: "missing",
		})
		require.True(t, domain.IsNotFound(err))
	})
}

func TestHandleCallback(t *testing.T) {
	t.Run("reserved contract payment marks the booking paid", func(t *testing.T) {
		svc, bookingSvc, _ := newTestPaymentService(t)

		booking, err := bookingSvc.CreateBooking(context.Background(), validCreateRequest())
		require.NoError(t, err)

		orderID := "contract-payment-" + booking.ID + "-1740000000000"
		require.NoError(t, svc.HandleCallback(context.Background(), orderID, "RESERVED"))

		updated, err := bookingSvc.GetBooking(context.Background(), booking.ID)
		require.NoError(t, err)
		require.Equal(t, entity.PaymentPaid, updated.PaymentStatus)
	})

	t.Run("ignores non-contract orders and other statuses", func(t *testing.T) {
		svc, _, _ := newTestPaymentService(t)
		require.NoError(t, svc.HandleCallback(context.Background(), "booking-2026-06-20-1-00001", "RESERVED"))
		require.NoError(t, svc.HandleCallback(context.Background(), "contract-payment-x-1", "CANCELLED"))
	})
}

func TestBookingIDFromOrder(t *testing.T) {
	for _, tc := range []struct {
		orderID string
		want    string
		ok      bool
	}{
		{"contract-payment-abc-123-1740000000000", "abc-123", true},
		{"contract-payment-abc-1740000000000", "abc", true},
		{"booking-2026-06-20-1-00001", "", false},
		{"contract-payment-", "", false},
	} {
		got, ok := bookingIDFromOrder(tc.orderID)
		require.Equal(t, tc.ok, ok, tc.orderID)
		require.Equal(t, tc.want, got, tc.orderID)
	}
}
