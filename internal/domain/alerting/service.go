package alerting

import "context"

// Service covers device registration for push alerts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterDevice registers a device token for the authenticated user. A token
// already registered to another user is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params RegisterTokenParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpsertDeviceToken(ctx, params)
}
