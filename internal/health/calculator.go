package health

import (
	"fmt"

	"github.com/mqasimca/nvctl/internal/domain"
)

// Params bundles the telemetry one Calculate call needs. Every optional
// field uses a bool "ok" companion or a pointer rather than a zero value,
// since zero is itself a meaningful reading for several of these metrics.
type Params struct {
	Temperature         domain.Temperature
	Thresholds          domain.ThermalThresholds
	PowerUsage          domain.PowerLimit
	PowerLimit          domain.PowerLimit
	IsThermalThrottling bool
	IsPowerThrottling   bool

	EccErrors      domain.EccErrors
	HasEcc         bool
	VramUsageRatio float64
	HasVramUsage   bool
	Utilization    domain.Utilization
	HasUtilization bool

	PcieThroughput domain.PcieThroughput
	PcieStatus     domain.PcieLinkStatus
	PcieReplay     domain.PcieReplayCounter
	HasPcie        bool

	UptimeSeconds uint64
}

// Calculator scores a GPU's health as a weighted average of five category
// scores. The weights sum to 1.0: DefaultCalculator's literal weights do, and
// NewCalculator rejects weights whose sum is not within 0.001 of 1.0.
type Calculator struct {
	thermalWeight     float64
	powerWeight       float64
	memoryWeight      float64
	performanceWeight float64
	pcieWeight        float64
}

// DefaultCalculator weights thermal and memory health highest, since
// sustained high temperature and ECC errors are the two categories most
// likely to indicate developing hardware failure.
func DefaultCalculator() Calculator {
	return Calculator{
		thermalWeight:     0.30,
		powerWeight:       0.20,
		memoryWeight:      0.25,
		performanceWeight: 0.15,
		pcieWeight:        0.10,
	}
}

func NewCalculator(thermal, power, memory, performance, pcie float64) (Calculator, error) {
	total := thermal + power + memory + performance + pcie
	if total < 0.999 || total > 1.001 {
		return Calculator{}, fmt.Errorf("health: category weights must sum to 1.0, got %.3f", total)
	}

	return Calculator{
		thermalWeight:     thermal,
		powerWeight:       power,
		memoryWeight:      memory,
		performanceWeight: performance,
		pcieWeight:        pcie,
	}, nil
}

func (c Calculator) Calculate(p Params) Breakdown {
	thermal := c.calculateThermal(p)
	power := c.calculatePower(p)
	memory := c.calculateMemory(p)
	performance := c.calculatePerformance(p)
	pcie := c.calculatePcie(p)

	overall := NewScore(int(round(
		float64(thermal)*c.thermalWeight +
			float64(power)*c.powerWeight +
			float64(memory)*c.memoryWeight +
			float64(performance)*c.performanceWeight +
			float64(pcie)*c.pcieWeight,
	)))

	var issues []Issue
	var recommendations []string

	issues, recommendations = c.analyzeThermal(p, issues, recommendations)
	issues, recommendations = c.analyzePower(p, issues, recommendations)
	issues, recommendations = c.analyzeMemory(p, issues, recommendations)
	issues, recommendations = c.analyzePerformance(p, issues, recommendations)
	issues, recommendations = c.analyzePcie(p, issues, recommendations)

	return Breakdown{
		Overall:         overall,
		Thermal:         thermal,
		Power:           power,
		Memory:          memory,
		Performance:     performance,
		Pcie:            pcie,
		Issues:          issues,
		Recommendations: recommendations,
	}
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}

	return int(v + 0.5)
}

func saturatingSub(score, delta int) int {
	if score < delta {
		return 0
	}

	return score - delta
}

func (c Calculator) calculateThermal(p Params) Score {
	temp := p.Temperature.Celsius()
	score := 100

	if p.Thresholds.Slowdown != nil {
		slowdown := p.Thresholds.Slowdown.Celsius()

		switch {
		case temp >= slowdown:
			score = 0
		case temp >= slowdown-10:
			ratio := float64(slowdown-temp) / 10.0
			score = int(ratio * 50.0)
		case temp >= 80:
			score = 75
		case temp >= 70:
			score = 90
		}
	} else {
		switch {
		case temp >= 90:
			score = 10
		case temp >= 85:
			score = 40
		case temp >= 80:
			score = 70
		case temp >= 70:
			score = 90
		}
	}

	if p.IsThermalThrottling {
		score = saturatingSub(score, 30)
	}

	if p.IsPowerThrottling {
		score = saturatingSub(score, 10)
	}

	return NewScore(score)
}

func (c Calculator) calculatePower(p Params) Score {
	limit := p.PowerLimit.Watts()
	if limit <= 0 {
		limit = 1
	}

	ratio := float64(p.PowerUsage.Watts()) / float64(limit)
	score := 100

	switch {
	case ratio >= 0.98:
		score = 50
	case ratio >= 0.90:
		score = 75
	case ratio >= 0.80:
		score = 90
	}

	if p.IsPowerThrottling {
		score = saturatingSub(score, 40)
	}

	return NewScore(score)
}

func (c Calculator) calculateMemory(p Params) Score {
	score := 100

	if p.HasEcc {
		switch {
		case p.EccErrors.HasUncorrectable():
			score = 0
		case p.EccErrors.CorrectableExceedsThreshold(p.UptimeSeconds):
			score = 40
		case p.EccErrors.CorrectableCurrent > 0:
			score = 85
		}
	}

	if p.HasVramUsage {
		switch {
		case p.VramUsageRatio >= 0.95:
			score = saturatingSub(score, 20)
		case p.VramUsageRatio >= 0.85:
			score = saturatingSub(score, 10)
		}
	}

	return NewScore(score)
}

// calculatePerformance is deliberately informational: low utilization means
// idle, not unhealthy, so the only penalty is for active throttling, and a
// heavy load with no throttling always scores 100.
func (c Calculator) calculatePerformance(p Params) Score {
	score := 100

	if p.IsThermalThrottling || p.IsPowerThrottling {
		score = 70
	}

	if p.HasUtilization && p.Utilization.GpuPercent > 80 {
		score = 100
	}

	return NewScore(score)
}

func (c Calculator) calculatePcie(p Params) Score {
	score := 100

	if p.HasPcie {
		efficiency := p.PcieThroughput.BandwidthEfficiencyPercent(p.PcieStatus.CurrentGen, p.PcieStatus.CurrentWidth)

		switch {
		case efficiency < 50.0:
			score = 60
		case efficiency < 75.0:
			score = 85
		}

		switch {
		case p.PcieReplay.Count() > 1000:
			score = saturatingSub(score, 30)
		case p.PcieReplay.Count() > 100:
			score = saturatingSub(score, 15)
		case p.PcieReplay.Count() > 0:
			score = saturatingSub(score, 5)
		}
	}

	return NewScore(score)
}

func (c Calculator) analyzeThermal(p Params, issues []Issue, recs []string) ([]Issue, []string) {
	temp := p.Temperature.Celsius()

	switch {
	case p.IsThermalThrottling:
		issues = append(issues, Issue{
			Severity:    IssueCritical,
			Category:    "Thermal",
			Description: fmt.Sprintf("GPU is thermal throttling at %d°C", temp),
		})
		recs = append(recs, "Improve cooling: clean dust filters, increase fan speed, or improve case airflow")
	case temp >= 85:
		issues = append(issues, Issue{
			Severity:    IssueWarning,
			Category:    "Thermal",
			Description: fmt.Sprintf("High temperature: %d°C", temp),
		})
		recs = append(recs, "Consider increasing fan speed or improving cooling")
	}

	return issues, recs
}

func (c Calculator) analyzePower(p Params, issues []Issue, recs []string) ([]Issue, []string) {
	limit := p.PowerLimit.Watts()
	if limit <= 0 {
		limit = 1
	}

	ratio := float64(p.PowerUsage.Watts()) / float64(limit)

	switch {
	case p.IsPowerThrottling:
		issues = append(issues, Issue{
			Severity:    IssueCritical,
			Category:    "Power",
			Description: "GPU is power throttling",
		})
		recs = append(recs, "Increase power limit or reduce workload intensity")
	case ratio >= 0.95:
		issues = append(issues, Issue{
			Severity:    IssueWarning,
			Category:    "Power",
			Description: fmt.Sprintf("Power usage near limit: %.0f%%", ratio*100),
		})
		recs = append(recs, "Consider increasing power limit if thermal headroom allows")
	}

	return issues, recs
}

func (c Calculator) analyzeMemory(p Params, issues []Issue, recs []string) ([]Issue, []string) {
	if p.HasEcc {
		switch {
		case p.EccErrors.HasUncorrectable():
			issues = append(issues, Issue{
				Severity: IssueCritical,
				Category: "Memory",
				Description: fmt.Sprintf("Uncorrectable ECC errors detected: %d",
					p.EccErrors.UncorrectableCurrent),
			})
			recs = append(recs, "CRITICAL: Uncorrectable memory errors indicate hardware failure. Consider RMA or replacement")
		case p.EccErrors.CorrectableExceedsThreshold(p.UptimeSeconds):
			rate := p.EccErrors.CorrectableRatePerHour(p.UptimeSeconds)
			issues = append(issues, Issue{
				Severity:    IssueWarning,
				Category:    "Memory",
				Description: fmt.Sprintf("High correctable ECC error rate: %.1f/hour", rate),
			})
			recs = append(recs, "Monitor ECC errors; sustained high rates may indicate degrading memory")
		}
	}

	if p.HasVramUsage && p.VramUsageRatio >= 0.95 {
		issues = append(issues, Issue{
			Severity:    IssueWarning,
			Category:    "Memory",
			Description: fmt.Sprintf("VRAM usage very high: %.0f%%", p.VramUsageRatio*100),
		})
		recs = append(recs, "Reduce VRAM usage or close unnecessary applications")
	}

	return issues, recs
}

func (c Calculator) analyzePerformance(p Params, issues []Issue, recs []string) ([]Issue, []string) {
	if p.IsThermalThrottling || p.IsPowerThrottling {
		issues = append(issues, Issue{
			Severity:    IssueInfo,
			Category:    "Performance",
			Description: "Performance reduced due to throttling",
		})
	}

	return issues, recs
}

func (c Calculator) analyzePcie(p Params, issues []Issue, recs []string) ([]Issue, []string) {
	if !p.HasPcie {
		return issues, recs
	}

	efficiency := p.PcieThroughput.BandwidthEfficiencyPercent(p.PcieStatus.CurrentGen, p.PcieStatus.CurrentWidth)

	if efficiency < 50.0 {
		issues = append(issues, Issue{
			Severity: IssueWarning,
			Category: "PCIe",
			Description: fmt.Sprintf("PCIe link running at reduced capability: Gen%d (max: Gen%d)",
				p.PcieStatus.CurrentGen, p.PcieStatus.MaxGen),
		})
		recs = append(recs, "Check PCIe slot configuration and ensure GPU is in appropriate slot")
	}

	if p.PcieReplay.Count() > 100 {
		issues = append(issues, Issue{
			Severity:    IssueWarning,
			Category:    "PCIe",
			Description: fmt.Sprintf("PCIe link errors detected: %d replays", p.PcieReplay.Count()),
		})
		recs = append(recs, "PCIe link instability detected; check PCIe power cables and slot connection")
	}

	return issues, recs
}
