package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	clientDomain "github.com/pousadapro/service-booking/internal/domain/client"
)

// ClientService exposes the derived client list. Clients are never stored;
// each call projects them from the owner's booking history.
type ClientService struct {
	bookingRepo     bookingDomain.Repository
	vipRevenueCents int64
	logger          *zap.Logger
}

// NewClientService creates a new ClientService. vipRevenueCents is the
// configured revenue threshold for the VIP tag.
func NewClientService(bookingRepo bookingDomain.Repository, vipRevenueCents int64, logger *zap.Logger) *ClientService {
	return &ClientService{bookingRepo: bookingRepo, vipRevenueCents: vipRevenueCents, logger: logger}
}

// ListClients projects the owner's bookings into client profiles, sorted by
// revenue descending.
func (s *ClientService) ListClients(ctx context.Context, ownerID uuid.UUID) ([]clientDomain.Client, error) {
	bookings, err := s.bookingRepo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return clientDomain.Project(bookings, s.vipRevenueCents), nil
}
