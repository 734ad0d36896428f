// Copyright 2019 The multi-geth Authors
// This file is part of the multi-geth library.
//
// The multi-geth library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The multi-geth library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the multi-geth library. If not, see <http://www.gnu.org/licenses/>.

package etchash

import "errors"

// Sentinel errors for the failure kinds a caller can observe. Precondition
// and epoch-range failures indicate a programming error on the caller's
// side; I/O and cancellation failures are environmental.
var (
	// ErrPrecondition is returned when a cache or DAG size violates the
	// alignment requirements (a multiple of the node size, and for DAGs,
	// of the mix-page size).
	ErrPrecondition = errors.New("etchash: precondition violated (misaligned size)")

	// ErrEpochOutOfRange is returned when a block number maps to an epoch
	// beyond the precomputed table bound.
	ErrEpochOutOfRange = errors.New("etchash: epoch out of range")

	// ErrIO wraps a failure from the DAG file prepare/mmap/write/flush path.
	ErrIO = errors.New("etchash: I/O failure")

	// ErrCancelled is returned when the progress callback aborts DAG
	// materialization.
	ErrCancelled = errors.New("etchash: dataset generation cancelled")

	// ErrInvalidDumpMagic is logged, never returned, when an existing DAG
	// file is the right size but its magic header doesn't match: the
	// caller folds this into a rebuild rather than failing.
	ErrInvalidDumpMagic = errors.New("etchash: invalid dataset dump magic")
)
