package mock

import (
	"testing"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ gpu.Device  = (*Device)(nil)
	_ gpu.Manager = (*Manager)(nil)
)

func TestManagerDeviceByName(t *testing.T) {
	d0 := NewDevice(0, "NVIDIA GeForce RTX 4090", "GPU-aaa")
	d1 := NewDevice(1, "NVIDIA RTX A6000", "GPU-bbb")
	mgr := NewManager(d0, d1)

	found, err := mgr.DeviceByName("rtx")
	require.NoError(t, err)
	assert.Equal(t, 0, found.Index(), "first matching index should win ties")

	_, err = mgr.DeviceByName("radeon")
	assert.Error(t, err)
}

func TestDeviceFanPolicyTransition(t *testing.T) {
	d := NewDevice(0, "mock", "GPU-ccc")

	policy, err := d.FanPolicy(0)
	require.NoError(t, err)
	assert.Equal(t, domain.FanPolicyAuto, policy)

	speed, _ := domain.NewFanSpeed(70)
	require.NoError(t, d.SetFanSpeed(0, speed))

	policy, err = d.FanPolicy(0)
	require.NoError(t, err)
	assert.Equal(t, domain.FanPolicyManual, policy, "writing a speed implicitly selects manual policy")
}
