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

// generateDatasetItem derives one 64-byte DAG node (§4.D) on demand from
// cache, a flat word buffer. keccak512 is supplied by the caller so repeated
// calls in a hot loop (light-mode mixing, full materialization) reuse one
// hash scratch state instead of allocating per call.
func generateDatasetItem(cache []uint32, index uint32, keccak512 hasher) []byte {
	rows := uint32(len(cache) / nodeWords)

	mix := make([]byte, hashBytes)
	binary.LittleEndian.PutUint32(mix, cache[(index%rows)*nodeWords]^index)
	for i := 1; i < nodeWords; i++ {
		binary.LittleEndian.PutUint32(mix[i*4:], cache[(index%rows)*nodeWords+uint32(i)])
	}
	keccak512(mix, mix)

	// Convert to words to avoid repeated byte (de)serialization in the
	// parent-accumulation loop.
	intMix := make([]uint32, nodeWords)
	for i := range intMix {
		intMix[i] = binary.LittleEndian.Uint32(mix[i*4:])
	}
	for i := uint32(0); i < datasetParents; i++ {
		parent := fnv(index^i, intMix[i%nodeWords]) % rows
		fnvHash(intMix, cache[parent*nodeWords:])
	}
	for i, val := range intMix {
		binary.LittleEndian.PutUint32(mix[i*4:], val)
	}
	keccak512(mix, mix)
	return mix
}

// ProgressFunc reports the completion percentage during full DAG
// materialization (§4.E). Returning true cancels generation.
type ProgressFunc func(percent uint64) (cancel bool)

// generateDataset fills dest, a flat word buffer sized datasetSize/4, from
// cache using generateDatasetItem for every slot (§4.E). It is invoked once
// per DAG file build; the reference order is sequential, though the spec
// only requires that each slot be written exactly once.
func generateDataset(dest []uint32, cache []uint32, progress ProgressFunc) error {
	size := uint64(len(dest)) * 4
	if size%mixBytes != 0 || size%hashBytes != 0 {
		return ErrPrecondition
	}
	items := size / hashBytes

	var step uint64
	if items >= 100 {
		step = items / 100
	}

	keccak512 := keccak512Hasher()
	destBytes := asBytes(dest)

	for n := uint64(0); n < items; n++ {
		item := generateDatasetItem(cache, uint32(n), keccak512)
		copy(destBytes[n*hashBytes:(n+1)*hashBytes], item)

		if progress != nil && step > 0 && (n+1)%step == 0 {
			percent := ((n+1)*100 + items - 1) / items // integer ceil
			if percent > 100 {
				percent = 100
			}
			if progress(percent) {
				return ErrCancelled
			}
		}
	}
	// destBytes was filled via explicit little-endian byte writes; on a
	// big-endian host the word view (dest, read as []uint32 elsewhere) must
	// be byte-swapped once so dest[i] yields the same value
	// generateDatasetItem computed, mirroring generateCache's endian fixup.
	fixEndianArr32(dest)
	return nil
}
