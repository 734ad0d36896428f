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
	"hash"
	"unsafe"

	"golang.org/x/crypto/sha3"
)

// Protocol-wide word/byte geometry (component A).
const (
	fnvPrime = 0x01000193

	hashBytes      = 64 // bytes in a cache/dataset node
	nodeWords      = hashBytes / 4
	mixNodes       = 2
	mixBytes       = mixNodes * hashBytes // bytes in a mix / DAG page
	mixWords       = mixBytes / 4
	cacheRounds    = 3
	datasetParents = 256
	loopAccesses   = 64
	magicSize      = 8 // bytes, two little-endian uint32 words
)

// hasher is a repetitive hash function allowing the same scratch hash state
// to be reused between calls instead of allocating a new one every time.
type hasher func(dest []byte, data []byte)

// makeHasher creates a repetitive hasher, allowing the same hash data
// structures to be reused between hash runs instead of requiring new ones
// to be created. The returned function is not thread safe!
func makeHasher(h hash.Hash) hasher {
	// sha3.state supports Read to get the sum, use it to avoid the overhead
	// of Sum. Read alters the state but we reset the hash before every call.
	type readerHash interface {
		hash.Hash
		Read([]byte) (int, error)
	}
	rh, ok := h.(readerHash)
	if !ok {
		panic("can't find Read method on hash")
	}
	outputLen := rh.Size()
	return func(dest []byte, data []byte) {
		rh.Reset()
		rh.Write(data)
		rh.Read(dest[:outputLen])
	}
}

func keccak256Hasher() hasher { return makeHasher(sha3.NewLegacyKeccak256()) }
func keccak512Hasher() hasher { return makeHasher(sha3.NewLegacyKeccak512()) }

// keccak256 and keccak512 are convenience one-shot wrappers around the
// repetitive hashers above, for callers that hash once rather than in a loop.
func keccak256(data []byte) [32]byte {
	var out [32]byte
	keccak256Hasher()(out[:], data)
	return out
}

func keccak512(data []byte) [64]byte {
	var out [64]byte
	keccak512Hasher()(out[:], data)
	return out
}

// fnv is the FNV non-cryptographic mixing function used pervasively
// throughout the cache/DAG derivation and mix loop: (a * FNV_PRIME) XOR b,
// wrapping at 32 bits.
func fnv(a, b uint32) uint32 {
	return (a * fnvPrime) ^ b
}

// fnvHash mixes two equal-length uint32 slices word by word, writing the
// result into mix in place.
func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = fnv(mix[i], data[i])
	}
}

// isLittleEndian reports whether the local system is running in little or
// big endian byte order.
func isLittleEndian() bool {
	n := uint32(0x01020304)
	return *(*byte)(unsafe.Pointer(&n)) == 0x04
}

// asBytes returns a zero-copy byte view over a uint32 slice's backing array.
// Because a Node's byte and word views alias the same storage, every
// load/store into a cache or dataset buffer goes through this single
// conversion point.
func asBytes(words []uint32) []byte {
	if len(words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
}

// fixEndian32 swaps a uint32 in place when the host is big-endian, leaving
// it untouched on little-endian hosts. All on-disk and over-the-wire word
// streams for this engine are little-endian.
func fixEndian32(v uint32) uint32 {
	if isLittleEndian() {
		return v
	}
	return (v&0xff)<<24 | (v&0xff00)<<8 | (v&0xff0000)>>8 | (v&0xff000000)>>24
}

// fixEndianArr32 swaps every word of data in place when the host is
// big-endian, a no-op on little-endian hosts.
func fixEndianArr32(data []uint32) {
	if isLittleEndian() {
		return
	}
	for i, v := range data {
		data[i] = fixEndian32(v)
	}
}
