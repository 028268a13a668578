package scheduler

// ResourceQuota bounds steps and memory, at both global and per-actor
// scope. Grounded on original_source/physics_world/src/scheduler/resource.rs's
// ActorResourceQuota and PhysicsScheduler's global memory_limit/cpu_time_limit.
type ResourceQuota struct {
	StepQuota   uint64
	MemoryQuota uint32
}

// DefaultGlobalQuota is a generous default suitable for interactive use.
func DefaultGlobalQuota() ResourceQuota {
	return ResourceQuota{
		StepQuota:   10_000_000,
		MemoryQuota: 64 << 20, // 64MiB
	}
}

// PerActorDefault derives a per-actor share from the global quota: an
// actor's individual ceiling is never larger than the whole pool's.
func (q ResourceQuota) PerActorDefault() ResourceQuota {
	return ResourceQuota{
		StepQuota:   q.StepQuota,
		MemoryQuota: q.MemoryQuota,
	}
}

// ResourceUsageSnapshot is a point-in-time sample of scheduler-wide
// resource consumption, taken every 100 global steps. Grounded on
// physics_world/scheduler/resource.rs's ResourceUsageSnapshot.
type ResourceUsageSnapshot struct {
	GlobalStepCount     uint64
	TotalMemoryUsage    uint32
	ActiveActors        uint32
	WaitingActors       uint32
	MemoryFragmentation float64
}

// ResourceMonitoringStats is the scheduler's current resource-health view,
// returned by GetResourceStats. Grounded on the same file's
// ResourceMonitoringStats.
type ResourceMonitoringStats struct {
	MemoryUsage        uint32
	MemoryLimit        uint32
	MemoryUsagePercent float64
	StepsUsed          uint64
	StepLimit          uint64
	StepUsagePercent   float64
	FragmentationRatio float64
	ActiveActors       uint32
	WaitingActors      uint32
}

// UpdateResourceUsage recomputes global memory usage and, every 100 steps,
// appends a ResourceUsageSnapshot, trimming history past 1000 entries.
// Grounded on resource.rs's update_resource_usage.
func (s *Scheduler) UpdateResourceUsage() {
	var totalMemory uint32
	var active, waiting uint32
	var totalFrag float64

	for _, a := range s.Actors {
		totalMemory += a.VM.Arena.NextFree()
		if a.Waiting {
			waiting++
		} else {
			active++
		}
		totalFrag += a.VM.FragmentationRatio()
	}
	s.globalMemoryUsage = totalMemory

	var avgFrag float64
	if len(s.Actors) > 0 {
		avgFrag = totalFrag / float64(len(s.Actors))
	}

	if s.globalStepCount%100 == 0 {
		s.ResourceHist = append(s.ResourceHist, ResourceUsageSnapshot{
			GlobalStepCount:     s.globalStepCount,
			TotalMemoryUsage:    s.globalMemoryUsage,
			ActiveActors:        active,
			WaitingActors:       waiting,
			MemoryFragmentation: avgFrag,
		})
		if len(s.ResourceHist) > 1000 {
			s.ResourceHist = s.ResourceHist[len(s.ResourceHist)-1000:]
		}
	}
}

// GetResourceStats reports the scheduler's current resource-health view.
func (s *Scheduler) GetResourceStats() ResourceMonitoringStats {
	var memPercent float64
	if s.GlobalQuota.MemoryQuota > 0 {
		memPercent = float64(s.globalMemoryUsage) / float64(s.GlobalQuota.MemoryQuota) * 100
	}
	var stepPercent float64
	if s.GlobalQuota.StepQuota > 0 {
		stepPercent = float64(s.globalStepCount) / float64(s.GlobalQuota.StepQuota) * 100
	}

	var totalFrag float64
	var active, waiting uint32
	for _, a := range s.Actors {
		totalFrag += a.VM.FragmentationRatio()
		if a.Waiting {
			waiting++
		} else {
			active++
		}
	}
	var avgFrag float64
	if len(s.Actors) > 0 {
		avgFrag = totalFrag / float64(len(s.Actors))
	}

	return ResourceMonitoringStats{
		MemoryUsage:        s.globalMemoryUsage,
		MemoryLimit:        s.GlobalQuota.MemoryQuota,
		MemoryUsagePercent: memPercent,
		StepsUsed:          s.globalStepCount,
		StepLimit:          s.GlobalQuota.StepQuota,
		StepUsagePercent:   stepPercent,
		FragmentationRatio: avgFrag,
		ActiveActors:       active,
		WaitingActors:      waiting,
	}
}

// CheckResourceLimits reports whether global consumption has exceeded the
// scheduler's quota, in either dimension.
func (s *Scheduler) CheckResourceLimits() bool {
	return (s.GlobalQuota.MemoryQuota > 0 && s.globalMemoryUsage > s.GlobalQuota.MemoryQuota) ||
		(s.GlobalQuota.StepQuota > 0 && s.globalStepCount > s.GlobalQuota.StepQuota)
}
