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

// hashimoto aggregates data from a page source (light cache or full DAG) to
// produce the final mix digest and PoW result for one (header, nonce) trial
// (§4.F). lookup returns the node-words at a given DAG node index; callers
// supply a light-mode lookup (derives nodes on the fly) or a full-mode one
// (reads a materialized DAG buffer).
func hashimoto(hash []byte, nonce uint64, datasetSize uint64, lookup func(index uint32) []uint32) (mixHash []byte, result []byte) {
	rows := uint32(datasetSize / mixBytes)

	// Combine header hash and nonce into a 40-byte seed, then keccak512 it.
	seed := make([]byte, 40)
	copy(seed, hash)
	binary.LittleEndian.PutUint64(seed[32:], nonce)
	seed = keccak512Sum(seed)
	seedHead := binary.LittleEndian.Uint32(seed)

	// Start the mix by replicating the 16-word seed twice (mixWords == 32).
	mix := make([]uint32, mixWords)
	for i := range mix {
		mix[i] = binary.LittleEndian.Uint32(seed[(i%nodeWords)*4:])
	}

	temp := make([]uint32, len(mix))
	for i := 0; i < loopAccesses; i++ {
		parent := fnv(uint32(i)^seedHead, mix[i%len(mix)]) % rows
		for j := uint32(0); j < mixNodes; j++ {
			copy(temp[j*nodeWords:(j+1)*nodeWords], lookup(mixNodes*parent+j))
		}
		fnvHash(mix, temp)
	}

	// Compress the 32-word mix down to 8 words via FNV, four at a time.
	cmix := make([]uint32, mixWords/4)
	for i := 0; i < len(mix); i += 4 {
		cmix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}

	digest := make([]byte, 32)
	for i, v := range cmix {
		binary.LittleEndian.PutUint32(digest[i*4:], v)
	}
	return digest, keccak256Sum(append(seed, digest...))
}

func keccak512Sum(data []byte) []byte {
	v := keccak512(data)
	return v[:]
}

func keccak256Sum(data []byte) []byte {
	v := keccak256(data)
	return v[:]
}

// hashimotoLight computes the mix digest and result for (hash, nonce) using
// only a verification cache, deriving each DAG node on demand via
// generateDatasetItem (§4.G's compute path).
func hashimotoLight(datasetSize uint64, cache []uint32, hash []byte, nonce uint64) (mixHash []byte, result []byte) {
	keccak512 := keccak512Hasher()
	lookup := func(index uint32) []uint32 {
		raw := generateDatasetItem(cache, index, keccak512)
		words := make([]uint32, nodeWords)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return words
	}
	return hashimoto(hash, nonce, datasetSize, lookup)
}

// hashimotoFull computes the mix digest and result for (hash, nonce) using a
// fully materialized DAG buffer (§4.H's compute path).
func hashimotoFull(datasetSize uint64, dataset []uint32, hash []byte, nonce uint64) (mixHash []byte, result []byte) {
	lookup := func(index uint32) []uint32 {
		offset := index * nodeWords
		return dataset[offset : offset+nodeWords]
	}
	return hashimoto(hash, nonce, datasetSize, lookup)
}
