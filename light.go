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

// Result is the outcome of one (header, nonce) PoW trial: the mix hash
// published alongside the nonce, and the 256-bit result compared against a
// difficulty boundary.
type Result struct {
	MixHash [32]byte
	Result  [32]byte
}

// Light owns a verification cache for one epoch (component G / spec's
// LightContext). A Light is immutable and safe for concurrent Compute calls
// once NewLight has returned successfully.
type Light struct {
	blockNumber uint64
	epoch       uint64
	epochLength uint64
	cache       []uint32
	log         log.Logger
}

// NewLight builds the verification cache for the epoch containing block
// (§4.G). On success the returned Light always carries block's number and
// epoch and never needs a separate null check (§9's open question): failure
// is reported through the error return, not a nil pointer with unset fields.
func NewLight(block uint64, logger log.Logger) (*Light, error) {
	if logger == nil {
		logger = log.Root()
	}
	epochLength := calcEpochLength(block)
	epoch := calcEpoch(block, epochLength)

	size, err := CacheSize(block)
	if err != nil {
		return nil, err
	}
	if size%hashBytes != 0 {
		return nil, ErrPrecondition
	}

	seed := seedHash(block)
	cache := make([]uint32, size/4)
	if err := generateCache(cache, seed); err != nil {
		return nil, err
	}

	logger.Debug("Generated etchash verification cache", "epoch", epoch, "epochLength", epochLength, "size", size)
	return &Light{
		blockNumber: block,
		epoch:       epoch,
		epochLength: epochLength,
		cache:       cache,
		log:         logger,
	}, nil
}

// newLightInternal builds a Light directly from a cache size and seed,
// bypassing the block->epoch lookup (§6 light_new_internal). Used by tests
// that want a forced, reduced-size cache (§8 S5) without an epoch-scale
// block number.
func newLightInternal(cacheSize uint64, seed [32]byte) (*Light, error) {
	if cacheSize%hashBytes != 0 {
		return nil, ErrPrecondition
	}
	cache := make([]uint32, cacheSize/4)
	if err := generateCache(cache, seed); err != nil {
		return nil, err
	}
	return &Light{cache: cache, log: log.Root()}, nil
}

// Compute runs the mix loop in light mode for (hash, nonce) against this
// Light's epoch (§4.G light_compute).
func (l *Light) Compute(hash [32]byte, nonce uint64) (Result, error) {
	datasetSize, err := DatasetSize(l.blockNumber)
	if err != nil {
		return Result{}, err
	}
	return l.computeWithDatasetSize(datasetSize, hash, nonce)
}

func (l *Light) computeWithDatasetSize(datasetSize uint64, hash [32]byte, nonce uint64) (Result, error) {
	if datasetSize%mixBytes != 0 {
		return Result{}, ErrPrecondition
	}
	mix, result := hashimotoLight(datasetSize, l.cache, hash[:], nonce)
	var r Result
	copy(r.MixHash[:], mix)
	copy(r.Result[:], result)
	return r, nil
}

// Close releases the cache (§6 light_delete). Light holds no OS resources,
// so this only drops the reference for the garbage collector.
func (l *Light) Close() error {
	l.cache = nil
	return nil
}
