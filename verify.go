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
	"encoding/binary"

	"github.com/holiman/uint256"
)

// QuickHash recomputes the PoW result from a header hash, nonce and a
// claimed mix hash (§4.I), without needing a cache or DAG. A verifier uses
// this to confirm that result and mixHash are consistent before comparing
// result against a difficulty boundary.
func QuickHash(hash [32]byte, nonce uint64, mixHash [32]byte) [32]byte {
	seed := make([]byte, 40)
	copy(seed, hash[:])
	binary.LittleEndian.PutUint64(seed[32:], nonce)

	s := keccak512(seed)

	combined := make([]byte, 0, 64+32)
	combined = append(combined, s[:]...)
	combined = append(combined, mixHash[:]...)
	return keccak256(combined)
}

// CheckDifficulty reports whether hash, read as a big-endian 256-bit
// integer, is at or below boundary.
func CheckDifficulty(hash [32]byte, boundary *uint256.Int) bool {
	v := new(uint256.Int).SetBytes(hash[:])
	return v.Cmp(boundary) <= 0
}

// QuickCheck is the verifier-side combination of QuickHash and
// CheckDifficulty (§6 quick_check_difficulty): true iff the claimed
// mixHash reproduces a result within boundary.
func QuickCheck(hash [32]byte, nonce uint64, mixHash [32]byte, boundary *uint256.Int) bool {
	result := QuickHash(hash, nonce, mixHash)
	return CheckDifficulty(result, boundary)
}
