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
	"math/big"
	"sync"
)

// Epoch/seed constants (component B). activationBlock is the ECIP-1099
// hard-fork height on Ethereum Classic mainnet, at which the epoch length
// doubles from 30000 to 60000 blocks so that cache/DAG growth (and thus
// light-client memory pressure) slows down.
const (
	epochLength    = 30000
	newEpochLength = 60000
	activationBlock = 11_700_000

	maxEpoch = 2048 // epoch table bound asserted throughout the engine

	cacheInitBytes    = 1 << 24
	cacheGrowthBytes  = 1 << 17
	datasetInitBytes  = 1 << 30
	datasetGrowthBytes = 1 << 23
)

// calcEpochLength returns the epoch length that applies to block, switching
// from 30000 to 60000 blocks per epoch at the ECIP-1099 activation height.
func calcEpochLength(block uint64) uint64 {
	if block >= activationBlock {
		return newEpochLength
	}
	return epochLength
}

// calcEpoch returns the epoch index for block given its epoch length.
func calcEpoch(block, epochLen uint64) uint64 {
	return block / epochLen
}

// EpochNumber returns the ECIP-1099-aware epoch index for a block number.
func EpochNumber(block uint64) uint64 {
	return calcEpoch(block, calcEpochLength(block))
}

// seedHash computes the 32-byte epoch seed for block per §4.B: a chain of
// keccak256 starting from the zero hash. Past the ECIP-1099 activation the
// chain length is the 30000-block epoch count at the first block of the
// 60000-block epoch, so it keeps growing by two rounds per new epoch.
func seedHash(block uint64) [32]byte {
	var seed [32]byte

	epochLen := calcEpochLength(block)
	epoch := calcEpoch(block, epochLen)

	var k uint64
	if block >= activationBlock {
		k = epoch*newEpochLength + 1
	} else {
		k = epoch*epochLength + 1
	}
	iter := k / epochLength

	h := keccak256Hasher()
	for i := uint64(0); i < iter; i++ {
		h(seed[:], seed[:])
	}
	return seed
}

// SeedHash exposes seedHash to callers (§6 get_seedhash).
func SeedHash(block uint64) [32]byte {
	return seedHash(block)
}

// epochSizeTable lazily memoizes cacheSize/datasetSize per epoch, computed
// once from the canonical prime-below formula and cached for the lifetime
// of the process. Bounded to maxEpoch entries, matching the "precomputed
// for 2048 epochs" requirement without embedding a literal 2048-row table.
type epochSizeTable struct {
	mu     sync.Mutex
	values [maxEpoch]uint64
	filled [maxEpoch]bool
}

func (t *epochSizeTable) get(epoch uint64, calc func(uint64) uint64) (uint64, error) {
	if epoch >= maxEpoch {
		return 0, ErrEpochOutOfRange
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.filled[epoch] {
		t.values[epoch] = calc(epoch)
		t.filled[epoch] = true
	}
	return t.values[epoch], nil
}

var (
	cacheSizeTable   epochSizeTable
	datasetSizeTable epochSizeTable
)

// isPrime reports whether n is prime, using the same ProbablyPrime(1) call
// go-ethereum itself relies on for this exact computation: one Miller-Rabin
// round plus a Baillie-PSW test, which is exact for every n below 2^64.
func isPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(1)
}

// calcCacheSize implements §9's canonical formula:
// cache_size = prime-below(2^24 + 2^17*epoch - 64).
func calcCacheSize(epoch uint64) uint64 {
	size := cacheInitBytes + cacheGrowthBytes*epoch - hashBytes
	for !isPrime(size / hashBytes) {
		size -= 2 * hashBytes
	}
	return size
}

// calcDatasetSize implements §9's canonical formula:
// dag_size = prime-below(2^30 + 2^23*epoch - 128).
func calcDatasetSize(epoch uint64) uint64 {
	size := datasetInitBytes + datasetGrowthBytes*epoch - mixBytes
	for !isPrime(size / mixBytes) {
		size -= 2 * mixBytes
	}
	return size
}

// CacheSize returns the verification cache size for block, a multiple of 64.
func CacheSize(block uint64) (uint64, error) {
	epoch := calcEpoch(block, calcEpochLength(block))
	return cacheSizeTable.get(epoch, calcCacheSize)
}

// DatasetSize returns the full DAG size for block, a multiple of 128.
func DatasetSize(block uint64) (uint64, error) {
	epoch := calcEpoch(block, calcEpochLength(block))
	return datasetSizeTable.get(epoch, calcDatasetSize)
}
