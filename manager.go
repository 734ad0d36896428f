// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package etchash

import (
	"sync"

	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/log"
)

// Manager retains Light caches and, optionally, materialized Full DAGs
// across epochs, so that a miner or verifier crossing an epoch boundary
// never regenerates data it already built, and so that the *next* epoch's
// cache/DAG can be warmed ahead of time in the background.
//
// This is the supplemented retention/lifecycle layer described alongside
// the core algorithm: Light and Full on their own only know how to build
// one epoch's worth of data; Manager is what a long-running process
// actually calls.
type Manager struct {
	cfg Config
	log log.Logger

	mu      sync.Mutex
	lights  lru.BasicLRU[uint64, *Light]
	fulls   map[uint64]*Full // manual retention: Full owns mmap/file handles
	pending map[uint64]chan struct{}
}

// NewManager creates a Manager retaining cfg.CachesInMem lights (minimum 2:
// the current epoch and the next one being pre-generated) and tracking
// Full DAGs manually, since each carries an open file descriptor and mmap
// that must be released deterministically rather than silently evicted by
// an LRU callback.
func NewManager(cfg Config) *Manager {
	capacity := cfg.CachesInMem
	if capacity < 2 {
		capacity = 2
	}
	return &Manager{
		cfg:     cfg,
		log:     cfg.logger(),
		lights:  lru.NewBasicLRU[uint64, *Light](capacity),
		fulls:   make(map[uint64]*Full),
		pending: make(map[uint64]chan struct{}),
	}
}

// testCacheSize and testDatasetSize are the teacher's own kilobyte-scale
// fixture sizes (`cache.generate`/`dataset.generate`'s `test bool` branch),
// used in place of the real epoch tables whenever cfg.PowMode is ModeTest so
// that a test exercising Manager's real Light/Full paths never has to pay
// for a production-scale (up to ~1 GiB) DAG.
const (
	testCacheSize   = 1024
	testDatasetSize = 32 * 1024
)

// Light returns the verification cache for block's epoch, building it if
// not already retained, and kicks off background pre-generation of the
// following epoch's cache so a miner crossing the boundary never blocks.
func (m *Manager) Light(block uint64) (*Light, error) {
	epochLength := calcEpochLength(block)
	epoch := calcEpoch(block, epochLength)

	m.mu.Lock()
	if l, ok := m.lights.Get(epoch); ok {
		m.mu.Unlock()
		m.prefetchLight(block, epochLength)
		return l, nil
	}
	m.mu.Unlock()

	l, err := m.newLight(block, epoch, epochLength)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.lights.Add(epoch, l)
	m.mu.Unlock()

	m.prefetchLight(block, epochLength)
	return l, nil
}

// newLight builds the verification cache for (block, epoch, epochLength),
// taking the kilobyte-scale fixture path under ModeTest instead of the real
// epoch-sized tables.
func (m *Manager) newLight(block, epoch, epochLength uint64) (*Light, error) {
	if m.cfg.PowMode != ModeTest {
		return NewLight(block, m.log)
	}
	l, err := newLightInternal(testCacheSize, seedHash(block))
	if err != nil {
		return nil, err
	}
	l.blockNumber = block
	l.epoch = epoch
	l.epochLength = epochLength
	l.log = m.log
	return l, nil
}

// prefetchLight builds the cache for the epoch following block's, once,
// in the background, discarding the result if another goroutine beats it
// to completion or is already in flight for that epoch.
func (m *Manager) prefetchLight(block, epochLength uint64) {
	nextBlock := block + epochLength
	nextEpoch := calcEpoch(nextBlock, calcEpochLength(nextBlock))

	m.mu.Lock()
	if _, ok := m.lights.Get(nextEpoch); ok {
		m.mu.Unlock()
		return
	}
	if _, inFlight := m.pending[nextEpoch]; inFlight {
		m.mu.Unlock()
		return
	}
	done := make(chan struct{})
	m.pending[nextEpoch] = done
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.pending, nextEpoch)
			close(done)
			m.mu.Unlock()
		}()
		l, err := m.newLight(nextBlock, nextEpoch, calcEpochLength(nextBlock))
		if err != nil {
			m.log.Warn("Failed to pre-generate etchash cache", "epoch", nextEpoch, "err", err)
			return
		}
		m.mu.Lock()
		m.lights.Add(nextEpoch, l)
		m.mu.Unlock()
	}()
}

// Full returns the materialized DAG for block's epoch, building and
// persisting it under cfg.DatasetDir if not already retained.
func (m *Manager) Full(block uint64, progress ProgressFunc) (*Full, error) {
	epochLength := calcEpochLength(block)
	epoch := calcEpoch(block, epochLength)

	m.mu.Lock()
	if f, ok := m.fulls[epoch]; ok {
		m.mu.Unlock()
		return f, nil
	}
	m.mu.Unlock()

	light, err := m.Light(block)
	if err != nil {
		return nil, err
	}
	f, err := m.newFull(light, progress)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.fulls[epoch]; ok {
		// Lost the race against a concurrent caller; keep the winner,
		// release the duplicate we just built.
		m.mu.Unlock()
		f.Close()
		return existing, nil
	}
	m.evictFullsLocked()
	m.fulls[epoch] = f
	m.mu.Unlock()
	return f, nil
}

// newFull materializes the DAG for light's epoch, taking the kilobyte-scale
// fixture path under ModeTest instead of the real, up-to-~1 GiB epoch tables.
func (m *Manager) newFull(light *Light, progress ProgressFunc) (*Full, error) {
	if m.cfg.PowMode != ModeTest {
		return NewFull(m.cfg.DatasetDir, light, m.cfg, progress)
	}
	return newFullInternal(m.cfg.DatasetDir, seedHash(light.blockNumber), testDatasetSize, light, m.cfg, progress)
}

// evictFullsLocked drops the oldest (lowest-epoch) retained Full DAGs once
// the configured in-memory budget is exceeded. Called with m.mu held.
func (m *Manager) evictFullsLocked() {
	limit := m.cfg.DatasetsInMem
	if limit <= 0 {
		limit = 1
	}
	for len(m.fulls) >= limit {
		var oldest uint64
		first := true
		for epoch := range m.fulls {
			if first || epoch < oldest {
				oldest, first = epoch, false
			}
		}
		m.fulls[oldest].Close()
		delete(m.fulls, oldest)
	}
}

// Close releases every retained Full DAG's mmap and file handle. Retained
// Light caches hold no OS resources and are simply dropped.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for epoch, f := range m.fulls {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.fulls, epoch)
	}
	m.lights = lru.NewBasicLRU[uint64, *Light](1)
	return firstErr
}
