package request

type CreateBookingRequest struct {
	Date           string   `json:"date" validate:"required,bookingdate"`
	Time           string   `json:"time" validate:"required,bookingtime"`
	Duration       int      `json:"duration" validate:"omitempty,min=1,max=24"`
	RequesterName  string   `json:"requesterName" validate:"required,max=100"`
	RequesterEmail string   `json:"requesterEmail" validate:"required"`
	Phone          string   `json:"phone" validate:"omitempty,max=20"`
	EventType      string   `json:"eventType" validate:"omitempty,max=100"`
	Spaces         []string `json:"spaces"`
	Services       []string `json:"services"`
	Attendees      int      `json:"attendees" validate:"omitempty,min=0"`
	Message        string   `json:"message" validate:"omitempty,max=2000"`

	// Set by the Vipps pre-payment flow, never by the public form.
	PaymentStatus  string `json:"paymentStatus" validate:"omitempty,oneof=unpaid paid"`
	PaymentOrderID string `json:"paymentOrderId"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type SignBookingRequest struct {
	ID            string `json:"id" validate:"required"`
	Role          string `json:"role" validate:"omitempty,oneof=requester landlord"`
	SignatureData string `json:"signatureData" validate:"required"`
	SignerName    string `json:"signerName" validate:"required,max=100"`
}

type RemindRequest struct {
	ID      string `json:"id" validate:"required"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type VerifyAdminRequest struct {
	Password string `json:"password" validate:"required"`
}

type VippsInitiateBookingRequest struct {
	PhoneNumber   string   `json:"phoneNumber"`
	Spaces        []string `json:"spaces" validate:"required,min=1"`
	Attendees     int      `json:"attendees"`
	Date          string   `json:"date" validate:"required,bookingdate"`
	Time          string   `json:"time" validate:"required,bookingtime"`
	RequesterName string   `json:"requesterName" validate:"required,max=100"`
	EventType     string   `json:"eventType"`
}

type VippsCheckStatusRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	BookingID string `json:"bookingId"`
}

type VippsContractPaymentRequest struct {
	BookingID   string `json:"bookingId" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
}
