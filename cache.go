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

import "encoding/binary"

// generateCache implements the Sergio Demian Lerner SeqMemoHash construction
// (§4.C) into dest, a flat word buffer sized cacheSize/4. dest aliases the
// Light context's long-lived cache, so this is only ever called once per
// cache's lifetime.
func generateCache(dest []uint32, seed [32]byte) error {
	size := uint64(len(dest)) * 4
	if size%hashBytes != 0 {
		return ErrPrecondition
	}
	rows := int(size / hashBytes)

	cache := asBytes(dest)
	keccak512 := keccak512Hasher()

	// Sequentially produce the initial cache: nodes[0] = keccak512(seed),
	// nodes[i] = keccak512(nodes[i-1]).
	keccak512(cache, seed[:])
	for offset := uint64(hashBytes); offset < size; offset += hashBytes {
		keccak512(cache[offset:offset+hashBytes], cache[offset-hashBytes:offset])
	}

	// Low-round RandMemoHash: each node absorbs its predecessor XORed with
	// one pseudo-random peer, for cacheRounds passes.
	temp := make([]byte, hashBytes)
	for round := 0; round < cacheRounds; round++ {
		for i := 0; i < rows; i++ {
			srcOff := ((i - 1 + rows) % rows) * hashBytes
			dstOff := i * hashBytes
			xorOff := int(binary.LittleEndian.Uint32(cache[dstOff:])%uint32(rows)) * hashBytes

			for b := 0; b < hashBytes; b++ {
				temp[b] = cache[srcOff+b] ^ cache[xorOff+b]
			}
			keccak512(cache[dstOff:dstOff+hashBytes], temp)
		}
	}

	// The hashing above always produced little-endian words in cache's byte
	// layout regardless of host order (keccak operates on raw bytes); fix up
	// the word view so callers reading dest as []uint32 see canonical
	// little-endian values on big-endian hosts too.
	fixEndianArr32(dest)
	return nil
}
