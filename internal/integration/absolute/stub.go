// Package absolute is the Absolute Resilience device provider. Until the
// real API client lands the provider serves a fixed inventory.
package absolute

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/integration"
)

const (
	ProviderName = "absolute"

	minCredentialLength = 10
)

type StubProvider struct {
	latency time.Duration
	logger  *slog.Logger
}

func NewStubProvider(logger *slog.Logger) *StubProvider {
	return &StubProvider{
		latency: 500 * time.Millisecond,
		logger:  logger,
	}
}

// WithLatency overrides the simulated round trip.
func (p *StubProvider) WithLatency(d time.Duration) *StubProvider {
	p.latency = d
	return p
}

func (p *StubProvider) Name() string {
	return ProviderName
}

func (p *StubProvider) TestConnection(ctx context.Context, creds integration.Credentials) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	return p.authenticate(creds)
}

func (p *StubProvider) ListDevices(ctx context.Context, creds integration.Credentials) ([]integration.Device, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if err := p.authenticate(creds); err != nil {
		return nil, err
	}

	p.logger.Debug("absolute: listing devices", "count", len(devices))
	out := make([]integration.Device, len(devices))
	copy(out, devices)
	return out, nil
}

func (p *StubProvider) authenticate(creds integration.Credentials) error {
	if len(creds.TokenID) > minCredentialLength && len(creds.SecretKey) > minCredentialLength {
		return nil
	}
	return internal.NewUnauthorizedError("invalid token id or secret key", internal.ErrCodeProviderCredentials)
}

func (p *StubProvider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(p.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		err := internal.NewTransientError("absolute: request cancelled", ctx.Err())
		err.Code = internal.ErrCodeProviderUnavailable
		return err
	}
}

var devices = []integration.Device{
	{ID: 1001, Description: `Absolute: MacBook Pro 16"`, AssetTag: "ABS-001", Serial: "C02Z1234ABCD", CurrentHolder: "John Doe", Site: "Remoto", Status: "Ativo"},
	{ID: 1002, Description: "Absolute: Dell Latitude 7420", AssetTag: "ABS-002", Serial: "DELL5678IJKL", CurrentHolder: "Jane Smith", Site: "Escritório", Status: "Ativo"},
	{ID: 1003, Description: "Absolute: HP EliteBook", AssetTag: "ABS-003", Serial: "HP2468WXYZ", CurrentHolder: "", Site: "Estoque", Status: "Em Estoque"},
}
