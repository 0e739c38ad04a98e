package booking

import (
	"strings"
	"time"

	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// Guest is a value object holding the guest contact details recorded on a
// booking. Name and phone are the minimum a host needs to reach a guest.
type Guest struct {
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	NationalID string     `json:"national_id,omitempty"`
}

// Validate checks the required guest fields.
func (g Guest) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return shared.NewValidationError("guest name is required")
	}
	if strings.TrimSpace(g.Phone) == "" {
		return shared.NewValidationError("guest phone is required")
	}
	return nil
}
