package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ==================== BOOKING ID ====================

func GenerateBookingID() string {
	return uuid.New().String()
}

// ==================== VIPPS ORDER ID ====================

// GenerateOrderID creates a unique Vipps order id carrying the booking date.
// Format: booking-YYYY-MM-DD-<unix-millis>-<random>
func GenerateOrderID(date string) string {
	suffix := fmt.Sprintf("%05d", rand.Intn(100000))
	return fmt.Sprintf("booking-%s-%d-%s", date, time.Now().UnixMilli(), suffix)
}

// GenerateContractOrderID ties a contract payment to its booking.
func GenerateContractOrderID(bookingID string) string {
	return fmt.Sprintf("contract-payment-%s-%d", bookingID, time.Now().UnixMilli())
}
