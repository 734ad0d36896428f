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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/log"
)

// dagMagic is ETCHASH_DAG_MAGIC_NUM: two little-endian uint32 words written
// as the first 8 bytes of a DAG file once its body is fully materialized.
// Its presence is what lets a future open skip straight to MATCH.
var dagMagic = [2]uint32{0xbaddcafe, 0xfee1dead}

// algorithmRevision is folded into the on-disk file name so that an
// incompatible future layout never collides with, or is mistaken for, this
// one.
const algorithmRevision = 1

func dagMagicBytes() []byte {
	buf := make([]byte, magicSize)
	binary.LittleEndian.PutUint32(buf[0:], dagMagic[0])
	binary.LittleEndian.PutUint32(buf[4:], dagMagic[1])
	return buf
}

// datasetPath returns the deterministic path a DAG file for (epoch, seed)
// is stored at under dir (§6's "directory-naming/DAG-cache-path policy").
func datasetPath(dir string, epoch uint64, seed [32]byte) string {
	var endian string
	if !isLittleEndian() {
		endian = ".be"
	}
	return filepath.Join(dir, fmt.Sprintf("full-R%d-%d-%x%s", algorithmRevision, epoch, seed[:8], endian))
}

// prepareStatus mirrors §6's io_prepare return values, with the size-mismatch
// case folded into statusMismatch (see prepareDAGFile).
type prepareStatus int

const (
	statusFail prepareStatus = iota
	statusMatch
	statusMismatch
)

// prepareDAGFile opens or creates the DAG file at path, sized to hold
// magicSize+fullSize bytes, and classifies it per §6/§4.H:
//   - statusMatch: file exists, correct size, valid magic already present.
//   - statusMismatch: file is freshly created, was force-recreated after a
//     size mismatch, or exists at the right size without a valid magic; its
//     body must be (re)built by the caller.
//   - statusFail: an unrecoverable I/O error occurred.
func prepareDAGFile(path string, fullSize uint64, logger log.Logger) (prepareStatus, *os.File, error) {
	total := int64(magicSize) + int64(fullSize)

	file, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		if !os.IsNotExist(err) {
			return statusFail, nil, err
		}
		if mkErr := os.MkdirAll(filepath.Dir(path), 0755); mkErr != nil {
			return statusFail, nil, mkErr
		}
		file, err = os.Create(path)
		if err != nil {
			return statusFail, nil, err
		}
		if err := file.Truncate(total); err != nil {
			file.Close()
			return statusFail, nil, err
		}
		return statusMismatch, file, nil
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return statusFail, nil, err
	}
	if info.Size() != total {
		// Size mismatch: force-recreate by truncating to the correct size.
		// Per §6 the forced retry must then report MISMATCH, since a
		// reused, resized file can never carry a valid magic for this size.
		// Truncating to zero first drops the old magic and body.
		if err := file.Truncate(0); err != nil {
			file.Close()
			return statusFail, nil, err
		}
		if err := file.Truncate(total); err != nil {
			file.Close()
			return statusFail, nil, err
		}
		return statusMismatch, file, nil
	}

	magicBuf := make([]byte, magicSize)
	if _, err := file.ReadAt(magicBuf, 0); err != nil {
		file.Close()
		return statusFail, nil, err
	}
	if binary.LittleEndian.Uint32(magicBuf[0:]) == dagMagic[0] &&
		binary.LittleEndian.Uint32(magicBuf[4:]) == dagMagic[1] {
		return statusMatch, file, nil
	}
	logger.Debug("Existing etchash DAG file has invalid magic, regenerating", "path", path, "err", ErrInvalidDumpMagic)
	return statusMismatch, file, nil
}

// memoryMapFile mmaps an already-open file descriptor read-write shared,
// returning both the raw byte mapping (for the magic-number header) and a
// zero-copy []uint32 view over the whole mapping (for the DAG body).
func memoryMapFile(file *os.File) (mmap.MMap, []uint32, error) {
	mem, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(mem) == 0 {
		return mem, nil, nil
	}
	words := unsafe.Slice((*uint32)(unsafe.Pointer(&mem[0])), len(mem)/4)
	return mem, words, nil
}

// Full owns a materialized DAG backed by an mmap'd file (component H /
// spec's FullContext). Once NewFull returns successfully, data is immutable
// and safe for concurrent Compute calls.
type Full struct {
	light *Light

	file *os.File
	mmap mmap.MMap
	data []uint32 // DAG body view, offset magicSize into mmap

	log log.Logger
}

// NewFull materializes (or loads) the DAG for light's epoch under dir,
// reporting progress through progress, and returns an mmap-backed Full
// (§4.H full_new). On any intermediate failure, resources acquired so far
// are released in reverse order before the error is returned.
func NewFull(dir string, light *Light, cfg Config, progress ProgressFunc) (full *Full, err error) {
	logger := cfg.logger()

	datasetSize, derr := DatasetSize(light.blockNumber)
	if derr != nil {
		return nil, derr
	}
	seed := seedHash(light.blockNumber)
	path := datasetPath(dir, light.epoch, seed)

	status, file, perr := prepareDAGFile(path, datasetSize, logger)
	if perr != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, perr)
	}
	defer func() {
		if err != nil && file != nil {
			file.Close()
		}
	}()

	mem, words, merr := memoryMapFile(file)
	if merr != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, merr)
	}
	defer func() {
		if err != nil && mem != nil {
			_ = mem.Unmap()
		}
	}()
	if cfg.DatasetLockMmap {
		if lerr := mem.Lock(); lerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, lerr)
		}
	}

	magicWords := magicSize / 4
	data := words[magicWords:]

	if status == statusMatch {
		logger.Debug("Loaded existing etchash DAG", "epoch", light.epoch, "path", path)
		f := &Full{light: light, file: file, mmap: mem, data: data, log: logger}
		runtime.SetFinalizer(f, (*Full).finalizer)
		return f, nil
	}

	logger.Info("Generating etchash DAG", "epoch", light.epoch, "size", datasetSize, "path", path)
	if gerr := generateDataset(data, light.cache, progress); gerr != nil {
		return nil, gerr
	}

	if cfg.Fsync {
		// Make the body durable before the magic number marks it valid.
		if ferr := mem.Flush(); ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, ferr)
		}
		if serr := file.Sync(); serr != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, serr)
		}
	}
	copy(mem[:magicSize], dagMagicBytes())
	if ferr := mem.Flush(); ferr != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, ferr)
	}

	if dir != "" {
		cleanupStaleDatasets(dir, light.epoch, cfg.DatasetsOnDisk, logger)
	}

	f := &Full{light: light, file: file, mmap: mem, data: data, log: logger}
	runtime.SetFinalizer(f, (*Full).finalizer)
	return f, nil
}

// cleanupStaleDatasets removes DAG files under dir outside the retention
// window around epoch, mirroring the teacher's glob-and-delete pass in
// dataset.generate: run only after a fresh DAG had to be materialized
// (never on a cache-hit reload), so opening an existing file never pays
// for a directory scan. limit <= 0 disables cleanup entirely.
func cleanupStaleDatasets(dir string, epoch uint64, limit int, logger log.Logger) {
	if limit <= 0 {
		return
	}
	var endian string
	if !isLittleEndian() {
		endian = ".be"
	}

	var lower uint64
	if epoch > uint64(limit) {
		lower = epoch - uint64(limit)
	}
	upper := epoch + 2

	matches, _ := filepath.Glob(filepath.Join(dir, fmt.Sprintf("full-R%d*", algorithmRevision)))
	for _, file := range matches {
		var rev int
		var fileEpoch uint64
		var rest string
		if _, err := fmt.Sscanf(filepath.Base(file), "full-R%d-%d-%s"+endian, &rev, &fileEpoch, &rest); err != nil {
			// Doesn't match this algorithm revision's naming scheme; leave
			// it alone rather than guess at an unrecognized file.
			continue
		}
		if fileEpoch < lower || fileEpoch > upper {
			if err := os.Remove(file); err != nil {
				logger.Error("Failed to delete stale etchash DAG file", "epoch", fileEpoch, "file", file, "err", err)
			} else {
				logger.Debug("Deleted stale etchash DAG file", "epoch", fileEpoch, "file", file)
			}
		}
	}
}

// newFullInternal builds a Full directly from a directory, seed and size,
// bypassing the epoch lookup (§6 full_new_internal). Exercised by the
// reduced-parameter test fixture (§8 S5).
func newFullInternal(dir string, seed [32]byte, fullSize uint64, light *Light, cfg Config, progress ProgressFunc) (*Full, error) {
	path := datasetPath(dir, light.epoch, seed)
	logger := cfg.logger()

	status, file, perr := prepareDAGFile(path, fullSize, logger)
	if perr != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, perr)
	}
	var err error
	defer func() {
		if err != nil {
			file.Close()
		}
	}()

	mem, words, merr := memoryMapFile(file)
	if merr != nil {
		err = merr
		return nil, fmt.Errorf("%w: %v", ErrIO, merr)
	}
	defer func() {
		if err != nil {
			_ = mem.Unmap()
		}
	}()

	magicWords := magicSize / 4
	data := words[magicWords:]

	if status == statusMatch {
		f := &Full{light: light, file: file, mmap: mem, data: data, log: logger}
		runtime.SetFinalizer(f, (*Full).finalizer)
		return f, nil
	}

	if gerr := generateDataset(data, light.cache, progress); gerr != nil {
		err = gerr
		return nil, gerr
	}
	copy(mem[:magicSize], dagMagicBytes())
	if ferr := mem.Flush(); ferr != nil {
		err = ferr
		return nil, fmt.Errorf("%w: %v", ErrIO, ferr)
	}

	f := &Full{light: light, file: file, mmap: mem, data: data, log: logger}
	runtime.SetFinalizer(f, (*Full).finalizer)
	return f, nil
}

// Compute runs the mix loop in full mode for (hash, nonce) against this
// DAG (§4.H full_compute).
func (f *Full) Compute(hash [32]byte, nonce uint64) (Result, error) {
	datasetSize, err := DatasetSize(f.light.blockNumber)
	if err != nil {
		return Result{}, err
	}
	if datasetSize%mixBytes != 0 {
		return Result{}, ErrPrecondition
	}
	mix, result := hashimotoFull(datasetSize, f.data, hash[:], nonce)
	var r Result
	copy(r.MixHash[:], mix)
	copy(r.Result[:], result)
	return r, nil
}

// Dataset returns the materialized DAG body as a word slice (§6 full_dag).
func (f *Full) Dataset() []uint32 { return f.data }

// DatasetSize returns the byte length of the materialized DAG (§6
// full_dag_size).
func (f *Full) DatasetSize() uint64 { return uint64(len(f.data)) * 4 }

// Close releases the mmap and file handle (§4.H full_delete): munmap errors
// are ignored (nothing actionable), then the file is closed.
func (f *Full) Close() error {
	runtime.SetFinalizer(f, nil)
	return f.release()
}

func (f *Full) finalizer() {
	f.release()
}

func (f *Full) release() error {
	if f.mmap != nil {
		_ = f.mmap.Unmap()
		f.mmap = nil
	}
	f.data = nil
	if f.file != nil {
		err := f.file.Close()
		f.file = nil
		return err
	}
	return nil
}
