package quota

import "slices"

// Percentage returns floor(current*100/cap) clamped to [0,100] for a finite
// limit. A zero cap is always fully used.
func Percentage(current int64, limit Limit) int {
	if limit.IsUnlimited() {
		return 0
	}
	if limit.Cap() == 0 {
		return 100
	}
	pct := int((current * 100) / limit.Cap())
	return max(0, min(pct, 100))
}

// ClassifySeverity maps a raw (unclamped) percentage to its advisory band.
func ClassifySeverity(percentage int) Severity {
	switch {
	case percentage >= atLimitPct:
		return SeverityAtLimit
	case percentage >= nearLimitPct:
		return SeverityNearLimit
	default:
		return SeverityNormal
	}
}

// snapshot computes the usage state for one resource. At-limit is decided on
// the count itself (current >= cap), not the clamped percentage, so counts
// transiently above the cap still classify correctly.
func snapshot(current int64, limit Limit) Snapshot {
	if current < 0 {
		current = 0
	}
	if limit.IsUnlimited() {
		return Snapshot{Current: current, Limit: limit}
	}

	pct := Percentage(current, limit)
	sev := ClassifySeverity(pct)
	if !limit.Allows(current) {
		sev = SeverityAtLimit
	}
	return Snapshot{
		Current:    current,
		Limit:      limit,
		Percentage: &pct,
		Severity:   sev,
	}
}

// Evaluate computes the advisory usage report for a plan and the current
// resource counts. Pure function: no I/O, deterministic, same logic the
// admission gate relies on. Resources the plan does not limit are ignored;
// resources missing from counts evaluate at zero usage.
func Evaluate(plan Plan, counts map[Resource]int64) UsageReport {
	report := UsageReport{
		PlanID:   plan.ID,
		PlanName: plan.Name,
		Usage:    make(map[Resource]Snapshot, len(plan.Limits)),
		Features: slices.Clone(plan.Features),
	}
	if report.Features == nil {
		report.Features = []Feature{}
	}
	for res, limit := range plan.Limits {
		report.Usage[res] = snapshot(counts[res], limit)
	}
	return report
}
