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

func TestNewLightInternalRejectsMisalignedCacheSize(t *testing.T) {
	_, err := newLightInternal(hashBytes+1, [32]byte{})
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestLightComputeDeterministic(t *testing.T) {
	l, err := newLightInternal(hashBytes*8, [32]byte{5})
	require.NoError(t, err)

	var hash [32]byte
	copy(hash[:], []byte("light-compute-determinism"))

	r1, err := l.computeWithDatasetSize(hashBytes*16, hash, 7)
	require.NoError(t, err)
	r2, err := l.computeWithDatasetSize(hashBytes*16, hash, 7)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestLightComputeRejectsMisalignedDatasetSize(t *testing.T) {
	l, err := newLightInternal(hashBytes*8, [32]byte{5})
	require.NoError(t, err)

	var hash [32]byte
	_, err = l.computeWithDatasetSize(mixBytes+1, hash, 0)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestLightCloseDropsCache(t *testing.T) {
	l, err := newLightInternal(hashBytes*8, [32]byte{5})
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.Nil(t, l.cache)
}

func TestNewLightForBlockZero(t *testing.T) {
	l, err := NewLight(0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), l.epoch)
	require.NotEmpty(t, l.cache)
}
