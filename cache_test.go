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

	"github.com/stretchr/testify/require"
)

func TestGenerateCacheRejectsMisalignedSize(t *testing.T) {
	dest := make([]uint32, 3) // 12 bytes, not a multiple of hashBytes
	err := generateCache(dest, [32]byte{})
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestGenerateCacheDeterministic(t *testing.T) {
	seed := [32]byte{1, 2, 3}
	a := make([]uint32, (hashBytes*4)/4)
	b := make([]uint32, (hashBytes*4)/4)

	require.NoError(t, generateCache(a, seed))
	require.NoError(t, generateCache(b, seed))
	require.Equal(t, a, b)
}

func TestGenerateCacheDiffersBySeed(t *testing.T) {
	a := make([]uint32, (hashBytes*4)/4)
	b := make([]uint32, (hashBytes*4)/4)

	require.NoError(t, generateCache(a, [32]byte{1}))
	require.NoError(t, generateCache(b, [32]byte{2}))
	require.NotEqual(t, a, b)
}

func TestGenerateCacheNotAllZero(t *testing.T) {
	dest := make([]uint32, (hashBytes*4)/4)
	require.NoError(t, generateCache(dest, [32]byte{}))

	allZero := true
	for _, v := range dest {
		if v != 0 {
			allZero = false
			break
		}
	}
	require.False(t, allZero)
}
