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

import "github.com/ethereum/go-ethereum/log"

// Mode controls cache/DAG sizing, mirroring the teacher's ethashb3.Mode but
// trimmed to the two variants this core actually needs: real-sized
// production buffers, and the kilobyte-scale fixtures used by tests (§8 S5,
// §9's note on the progress-callback threshold).
type Mode uint

const (
	ModeNormal Mode = iota
	ModeTest
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeTest:
		return "Test"
	}
	return "unknown"
}

// Config configures cache/DAG retention and on-disk behavior shared by
// Light, Full and Manager.
type Config struct {
	// CachesInMem bounds how many epochs' verification caches Manager
	// retains. Light itself is always memory-only; there is no on-disk
	// cache file or retention limit to bound, since a cache is cheap
	// enough to regenerate that persisting it never pays for the added
	// file-lifecycle surface.
	CachesInMem int

	// DatasetDir, when non-empty, is the directory Full materializes and
	// mmaps DAG files under.
	DatasetDir      string
	DatasetsInMem   int
	DatasetsOnDisk  int // retention window for stale DAG files under DatasetDir; <= 0 disables cleanup
	DatasetLockMmap bool

	// Fsync chooses between a strict fsync of the DAG body before the
	// magic-number write (§9's design note) and the legacy flush-only
	// behavior, which remains readable by any conforming reader either way.
	Fsync bool

	PowMode Mode
	Log     log.Logger
}

func (c Config) logger() log.Logger {
	if c.Log == nil {
		return log.Root()
	}
	return c.Log
}
