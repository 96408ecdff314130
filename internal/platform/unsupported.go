//go:build !linux && !darwin

package platform

import (
	"context"
	"runtime"

	"go.uber.org/zap"

	"github.com/Guliveer/sysstats/internal/models"
)

// unsupportedProvider fails every request with ErrUnsupportedPlatform.
type unsupportedProvider struct{}

func newProvider(_ Options, logger *zap.Logger) Provider {
	logger.Debug("No system information backend for this OS", zap.String("os", runtime.GOOS))
	return unsupportedProvider{}
}

func (unsupportedProvider) Name() string { return "unsupported" }

func (unsupportedProvider) CPU(context.Context) (models.CPUSnapshot, error) {
	return models.CPUSnapshot{}, ErrUnsupportedPlatform
}

func (unsupportedProvider) Memory(context.Context) (models.MemorySnapshot, error) {
	return models.MemorySnapshot{}, ErrUnsupportedPlatform
}

func (unsupportedProvider) Disks(context.Context) ([]models.DiskEntry, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedProvider) Network(context.Context) ([]models.NetworkInterfaceEntry, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedProvider) ProcessStatus(context.Context) (models.ProcessStatusSummary, error) {
	return models.ProcessStatusSummary{}, ErrUnsupportedPlatform
}

func (unsupportedProvider) OS(context.Context) (models.OSSnapshot, error) {
	return models.OSSnapshot{}, ErrUnsupportedPlatform
}
