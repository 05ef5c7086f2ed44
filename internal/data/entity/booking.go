package entity

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the closed status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type SignerRole string

const (
	RoleRequester SignerRole = "requester"
	RoleLandlord  SignerRole = "landlord"
)

func (r SignerRole) Valid() bool {
	return r == RoleRequester || r == RoleLandlord
}

// Signature is one party's recorded consent on the rental contract.
// Re-signing the same role overwrites the previous record.
type Signature struct {
	Role          SignerRole `json:"role"`
	SignerName    string     `json:"signerName"`
	SignatureData string     `json:"signatureData"`
	SignedAt      time.Time  `json:"signedAt"`
	IPAddress     string     `json:"ipAddress"`
	UserAgent     string     `json:"userAgent"`
}

// Contract holds at most one signature per role.
type Contract struct {
	Requester *Signature `json:"requester,omitempty"`
	Landlord  *Signature `json:"landlord,omitempty"`
}

func (c *Contract) Signature(role SignerRole) *Signature {
	if c == nil {
		return nil
	}
	if role == RoleLandlord {
		return c.Landlord
	}
	return c.Requester
}

// BothSigned reports whether requester and landlord have both signed.
func (c *Contract) BothSigned() bool {
	return c != nil && c.Requester != nil && c.Landlord != nil
}

// Booking is the central reservation document.
type Booking struct {
	ID       string `json:"id"`
	Date     string `json:"date"`     // YYYY-MM-DD
	Time     string `json:"time"`     // HH:MM
	Duration int    `json:"duration"` // hours

	RequesterName  string `json:"requesterName"`
	RequesterEmail string `json:"requesterEmail"`
	Phone          string `json:"phone,omitempty"`

	EventType string   `json:"eventType,omitempty"`
	Spaces    []string `json:"spaces,omitempty"`
	Services  []string `json:"services,omitempty"`
	Attendees int      `json:"attendees,omitempty"`
	Message   string   `json:"message,omitempty"`

	Status Status `json:"status"`

	PaymentOrderID string        `json:"paymentOrderId,omitempty"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	// PaymentAmount is in minor currency units (øre), fixed at creation.
	PaymentAmount int64      `json:"paymentAmount,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`

	Contract *Contract `json:"contract,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PartitionKey routes point reads in the sharded document store.
// Derived from the booking month, never from mutable fields.
func (b *Booking) PartitionKey() string {
	return PartitionKeyForDate(b.Date)
}

func PartitionKeyForDate(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return time.Now().UTC().Format("2006-01")
}

// Start returns the reservation start instant in venue-local time.
func (b *Booking) Start() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.Time, time.Local)
}

// Overlaps reports whether the [start,end) windows of two bookings intersect.
// Bookings with unparseable windows never overlap.
func (b *Booking) Overlaps(other *Booking) bool {
	if b.Date != other.Date {
		return false
	}
	aStart, err := b.Start()
	if err != nil {
		return false
	}
	bStart, err := other.Start()
	if err != nil {
		return false
	}
	aEnd := aStart.Add(time.Duration(b.durationOrDefault()) * time.Hour)
	bEnd := bStart.Add(time.Duration(other.durationOrDefault()) * time.Hour)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (b *Booking) durationOrDefault() int {
	if b.Duration > 0 {
		return b.Duration
	}
	return 4
}

// Clone returns a deep copy so stored documents are never aliased by callers.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	if b.Spaces != nil {
		cp.Spaces = append([]string(nil), b.Spaces...)
	}
	if b.Services != nil {
		cp.Services = append([]string(nil), b.Services...)
	}
	if b.PaidAt != nil {
		t := *b.PaidAt
		cp.PaidAt = &t
	}
	if b.Contract != nil {
		c := Contract{}
		if b.Contract.Requester != nil {
			sig := *b.Contract.Requester
			c.Requester = &sig
		}
		if b.Contract.Landlord != nil {
			sig := *b.Contract.Landlord
			c.Landlord = &sig
		}
		cp.Contract = &c
	}
	return &cp
}
