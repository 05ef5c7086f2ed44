package usecase

// Rental prices in NOK. "Små møter" is charged per person.
var pricingNOK = map[string]int64{
	"Peisestue":     1500,
	"Salen":         3000,
	"Hele lokalet":  4000,
	"Bryllupspakke": 6000,
	"Små møter":     30,
}

const defaultMeetingAttendees = 10

// ComputeAmount returns the rental price in øre for the selected spaces.
// Unknown space names price at zero. The result is stored on the booking at
// creation and treated as authoritative for later capture.
func ComputeAmount(spaces []string, attendees int) int64 {
	var totalNOK int64
	for _, space := range spaces {
		price, ok := pricingNOK[space]
		if !ok {
			continue
		}
		if space == "Små møter" {
			count := attendees
			if count <= 0 {
				count = defaultMeetingAttendees
			}
			totalNOK += price * int64(count)
			continue
		}
		totalNOK += price
	}
	return totalNOK * 100
}
