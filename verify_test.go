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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestQuickHashMatchesHashimoto(t *testing.T) {
	cache := smallCache(t, [32]byte{3})
	var hash [32]byte
	copy(hash[:], []byte("quickhash-cross-check"))
	nonce := uint64(99)

	mix, result := hashimotoLight(uint64(16)*hashBytes, cache, hash[:], nonce)
	var mixHash [32]byte
	copy(mixHash[:], mix)

	got := QuickHash(hash, nonce, mixHash)
	var want [32]byte
	copy(want[:], result)
	require.Equal(t, want, got)
}

func TestCheckDifficultyBoundary(t *testing.T) {
	var low, high [32]byte
	low[31] = 1
	high[0] = 0xff

	boundary := uint256.NewInt(10)

	require.True(t, CheckDifficulty(low, boundary))
	require.False(t, CheckDifficulty(high, boundary))
}

func TestCheckDifficultyEqualToBoundaryPasses(t *testing.T) {
	boundary := uint256.NewInt(256)
	var hash [32]byte
	hash[30] = 1 // big-endian value 256

	require.True(t, CheckDifficulty(hash, boundary))
}

func TestQuickCheckMixHashSensitivity(t *testing.T) {
	var hash [32]byte
	copy(hash[:], []byte("quickcheck"))
	maxBoundary := new(uint256.Int).SetAllOne()

	var mixA, mixB [32]byte
	mixA[0] = 1
	mixB[0] = 2

	require.True(t, QuickCheck(hash, 1, mixA, maxBoundary))
	require.Equal(t, QuickHash(hash, 1, mixA) == QuickHash(hash, 1, mixB), false)
}

func TestQuickCheckAgainstZeroBoundaryAlmostAlwaysFails(t *testing.T) {
	var hash [32]byte
	copy(hash[:], []byte("quickcheck-zero-boundary"))
	var mix [32]byte
	mix[0] = 1

	zero := new(uint256.Int)
	require.False(t, QuickCheck(hash, 1, mix, zero))
}
