package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/sysstats/internal/models"
	"github.com/Guliveer/sysstats/internal/platform"
)

// fakeProvider returns canned snapshots and counts calls.
type fakeProvider struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CPU(context.Context) (models.CPUSnapshot, error) {
	f.calls.Add(1)
	return models.CPUSnapshot{ModelName: "Test CPU", LogicalProcessors: 4}, f.err
}

func (f *fakeProvider) Memory(context.Context) (models.MemorySnapshot, error) {
	f.calls.Add(1)
	return models.MemorySnapshot{Total: 1024, Free: 256, Used: 768}, f.err
}

func (f *fakeProvider) Disks(context.Context) ([]models.DiskEntry, error) {
	f.calls.Add(1)
	return []models.DiskEntry{{MountPoint: "/", Total: 10}}, f.err
}

func (f *fakeProvider) Network(context.Context) ([]models.NetworkInterfaceEntry, error) {
	f.calls.Add(1)
	return []models.NetworkInterfaceEntry{{Name: "eth0", IPAddress: "10.0.0.1"}}, f.err
}

func (f *fakeProvider) ProcessStatus(context.Context) (models.ProcessStatusSummary, error) {
	f.calls.Add(1)
	return models.ProcessStatusSummary{Total: 3, Running: 1}, f.err
}

func (f *fakeProvider) OS(context.Context) (models.OSSnapshot, error) {
	f.calls.Add(1)
	return models.OSSnapshot{Name: "TestOS", ProcessCount: 3}, f.err
}

func TestDefaultRegistryNames(t *testing.T) {
	r := NewDefaultRegistry(&fakeProvider{}, zaptest.NewLogger(t))

	var names []string
	for _, c := range r.Collectors() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{CPUName, MemoryName, DiskName, NetworkName, OSInfoName, ProcessStatusName}, names)
}

func TestRegistryCollect(t *testing.T) {
	r := NewDefaultRegistry(&fakeProvider{}, zaptest.NewLogger(t))

	data, err := r.Collect(context.Background(), CPUName)
	require.NoError(t, err)
	assert.Equal(t, models.CPUSnapshot{ModelName: "Test CPU", LogicalProcessors: 4}, data)

	data, err = r.Collect(context.Background(), DiskName)
	require.NoError(t, err)
	assert.Equal(t, []models.DiskEntry{{MountPoint: "/", Total: 10}}, data)

	_, err = r.Collect(context.Background(), "gpu")
	assert.Error(t, err)
}

func TestRegistryCollectWrapsProviderError(t *testing.T) {
	r := NewDefaultRegistry(&fakeProvider{err: platform.ErrUnsupportedPlatform}, zaptest.NewLogger(t))

	_, err := r.Collect(context.Background(), MemoryName)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
}

func TestRegistryCollectAll(t *testing.T) {
	provider := &fakeProvider{}
	r := NewDefaultRegistry(provider, zaptest.NewLogger(t))

	results := r.CollectAll(context.Background())
	assert.Len(t, results, 6)
	assert.Equal(t, int32(6), provider.calls.Load())
	for name, res := range results {
		assert.Equal(t, name, res.Name)
		assert.NoError(t, res.Error)
		assert.NotNil(t, res.Data)
	}
	assert.Equal(t, models.OSSnapshot{Name: "TestOS", ProcessCount: 3}, results[OSInfoName].Data)
}

func TestRegistryCollectAllReportsErrors(t *testing.T) {
	r := NewDefaultRegistry(&fakeProvider{err: errors.New("boom")}, zaptest.NewLogger(t))

	results := r.CollectAll(context.Background())
	require.Len(t, results, 6)
	for _, res := range results {
		assert.EqualError(t, res.Error, "boom")
	}
}

func TestRegisterSkipsUnavailableAndReplacesDuplicates(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	r.Register(NewCPUCollector(nil))
	assert.Empty(t, r.Collectors())

	first := &fakeProvider{}
	second := &fakeProvider{}
	r.Register(NewCPUCollector(first))
	r.Register(NewCPUCollector(second))
	require.Len(t, r.Collectors(), 1)

	_, err := r.Collect(context.Background(), CPUName)
	require.NoError(t, err)
	assert.Equal(t, int32(0), first.calls.Load())
	assert.Equal(t, int32(1), second.calls.Load())
}

func TestRegistryCollectNames(t *testing.T) {
	provider := &fakeProvider{}
	r := NewDefaultRegistry(provider, zaptest.NewLogger(t))

	results := r.CollectNames(context.Background(), []string{MemoryName, "gpu", MemoryName})
	require.Len(t, results, 2)
	assert.NoError(t, results[MemoryName].Error)
	assert.Error(t, results["gpu"].Error)
	assert.Equal(t, int32(1), provider.calls.Load())
}
