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

func TestFNV(t *testing.T) {
	require.Equal(t, uint32(0), fnv(0, 0))
	require.NotEqual(t, fnv(1, 2), fnv(2, 1))
}

func TestFNVHash(t *testing.T) {
	mix := []uint32{1, 2, 3, 4}
	data := []uint32{5, 6, 7, 8}
	want := make([]uint32, len(mix))
	for i := range want {
		want[i] = fnv(mix[i], data[i])
	}
	fnvHash(mix, data)
	require.Equal(t, want, mix)
}

func TestAsBytesAliasesBackingArray(t *testing.T) {
	words := []uint32{0x01020304}
	b := asBytes(words)
	require.Len(t, b, 4)

	words[0] = 0xffffffff
	require.Equal(t, byte(0xff), b[0])
}

func TestAsBytesEmpty(t *testing.T) {
	require.Nil(t, asBytes(nil))
}

func TestFixEndian32RoundTrip(t *testing.T) {
	v := uint32(0x11223344)
	got := fixEndian32(v)
	if isLittleEndian() {
		require.Equal(t, v, got)
	} else {
		require.Equal(t, uint32(0x44332211), got)
	}
}

func TestKeccak256And512KnownSize(t *testing.T) {
	h256 := keccak256([]byte("etchash"))
	h512 := keccak512([]byte("etchash"))
	require.Len(t, h256, 32)
	require.Len(t, h512, 64)
	require.NotEqual(t, h256[:32], h512[:32])
}

func TestMakeHasherReuseIsDeterministic(t *testing.T) {
	h := keccak256Hasher()
	var a, b [32]byte
	h(a[:], []byte("one"))
	h(b[:], []byte("one"))
	require.Equal(t, a, b)

	h(b[:], []byte("two"))
	require.NotEqual(t, a, b)
}
