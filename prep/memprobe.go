package prep

import "github.com/shirou/gopsutil/mem"

// HostMemoryProbe implements MemoryProbe by reading real host memory
// statistics via gopsutil, matching spec §5's "best-effort
// availableMemory probe" and the Params.MaxMemoryMB ceiling
// (SPEC_FULL §12.2): RemainingAvailable is the lesser of the OS-reported
// available memory and the configured ceiling (0 means no ceiling).
type HostMemoryProbe struct {
	MaxMemoryMB int
}

// RemainingAvailable returns bytes available, falling back to the
// configured ceiling (or an unbounded value) if the host stats can't
// be read — a probe failure must never itself stop construction, only
// the heuristic it feeds into (spec §7: MemoryExhaustion is a warning,
// not a fatal condition).
func (h HostMemoryProbe) RemainingAvailable() uint64 {
	ceiling := uint64(1 << 62)
	if h.MaxMemoryMB > 0 {
		ceiling = uint64(h.MaxMemoryMB) * 1 << 20
	}
	v, err := mem.VirtualMemory()
	if err != nil {
		return ceiling
	}
	if v.Available < ceiling {
		return v.Available
	}
	return ceiling
}
