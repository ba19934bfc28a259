package orch

// LaneCount exposes how many room lanes are held.
func (o *Orchestrator) LaneCount() int {
	o.lanesMu.Lock()
	defer o.lanesMu.Unlock()
	return len(o.lanes)
}
