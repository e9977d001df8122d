package domain

import (
	"fmt"

	"github.com/mqasimca/nvctl/internal/errors"
)

type PcieGeneration int

const (
	PcieGen1 PcieGeneration = iota + 1
	PcieGen2
	PcieGen3
	PcieGen4
	PcieGen5
)

// PcieLinkWidth is a validated PCIe lane count. The vendor ABI only ever
// reports one of {1,2,4,8,16,32} lanes; any other value is a read error, not
// a legitimate width, so the constructor rejects it rather than clamping.
type PcieLinkWidth struct {
	lanes int
}

func NewPcieLinkWidth(lanes int) (PcieLinkWidth, error) {
	switch lanes {
	case 1, 2, 4, 8, 16, 32:
		return PcieLinkWidth{lanes: lanes}, nil
	default:
		return PcieLinkWidth{}, errors.New().WithData(ErrInvalidLinkWidth,
			fmt.Sprintf("lanes=%d valid={1,2,4,8,16,32}", lanes))
	}
}

func (w PcieLinkWidth) Lanes() int {
	return w.lanes
}

// PcieLinkStatus reports the current and maximum negotiated link state.
type PcieLinkStatus struct {
	CurrentGen   PcieGeneration
	MaxGen       PcieGeneration
	CurrentWidth PcieLinkWidth
	MaxWidth     PcieLinkWidth
}

// PcieThroughput is an instantaneous bandwidth sample.
type PcieThroughput struct {
	TxBytesPerSec uint64
	RxBytesPerSec uint64
}

// BandwidthEfficiencyPercent returns observed throughput as a percentage of
// the theoretical maximum for the given generation and width (used by the
// health calculator's PCIe category).
func (t PcieThroughput) BandwidthEfficiencyPercent(gen PcieGeneration, width PcieLinkWidth) float64 {
	maxBytesPerSec := pcieLaneBytesPerSec(gen) * float64(width.lanes)
	if maxBytesPerSec <= 0 {
		return 0
	}

	observed := float64(t.TxBytesPerSec + t.RxBytesPerSec)

	return observed / maxBytesPerSec * 100
}

// pcieLaneBytesPerSec returns the approximate per-lane, per-direction
// theoretical bandwidth for a PCIe generation, in bytes/sec.
func pcieLaneBytesPerSec(gen PcieGeneration) float64 {
	const gen1 = 250_000_000.0 // ~2.5 GT/s, 8b/10b encoding
	switch gen {
	case PcieGen1:
		return gen1
	case PcieGen2:
		return gen1 * 2
	case PcieGen3:
		return gen1 * 2 * 1.9373 // 8 GT/s, 128b/130b encoding
	case PcieGen4:
		return gen1 * 2 * 1.9373 * 2
	case PcieGen5:
		return gen1 * 2 * 1.9373 * 4
	default:
		return 0
	}
}

// PcieReplayCounter is the PCIe link-layer retry counter.
type PcieReplayCounter struct {
	count uint64
}

func NewPcieReplayCounter(count uint64) PcieReplayCounter {
	return PcieReplayCounter{count: count}
}

func (c PcieReplayCounter) Count() uint64 {
	return c.count
}
