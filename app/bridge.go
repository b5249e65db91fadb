// SPDX-License-Identifier: Unlicense OR MIT

package app

// Create starts the render worker. The worker blocks until the
// first Resume before touching the runtime. Create is a no-op on a
// State that was already created.
func (s *State) Create() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.running = true
	go s.worker()
}

// Resume marks the app foregrounded and wakes the worker.
func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumed = true
	s.cond.Broadcast()
}

// Pause marks the app backgrounded. The worker throttles its loop
// until the next Resume.
func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumed = false
	s.cond.Broadcast()
}

// Destroy stops the worker, blocks until it has torn everything
// down, and releases the platform. The State must not be used
// afterwards.
func (s *State) Destroy() {
	s.mu.Lock()
	started := s.started
	s.running = false
	s.cond.Broadcast()
	s.mu.Unlock()
	if started {
		<-s.workerDone
	}
	s.platform.Release()
}

// stop asks the worker loop to exit. Unlike Destroy it can be
// called from the worker itself.
func (s *State) stop() {
	s.mu.Lock()
	s.running = false
	s.cond.Broadcast()
	s.mu.Unlock()
}

// waitResumed blocks until the app is foregrounded or destroyed and
// reports whether the worker should keep going.
func (s *State) waitResumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running && !s.resumed {
		s.cond.Wait()
	}
	return s.running
}

// flags snapshots the lifecycle flags.
func (s *State) flags() (running, resumed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.resumed
}
