// Copyright 2026 The nutsdb Author. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const (
	// SnapshotMagic starts every snapshot file.
	SnapshotMagic = "NQSN"

	// SnapshotVersion is the current snapshot layout.
	SnapshotVersion uint16 = 1

	snapshotHeaderSize = 6

	// SnapshotEntryHeaderSize is crc(4) | indexSize(2) | keySize(4) | valueSize(4).
	SnapshotEntryHeaderSize = 14

	lockSuffix = ".lock"
)

var (
	// ErrSnapshotCorrupt is returned when a snapshot file fails validation.
	ErrSnapshotCorrupt = errors.New("snapshot is corrupt")

	// ErrSnapshotLocked is returned when another process holds the snapshot lock.
	ErrSnapshotLocked = errors.New("snapshot is locked")
)

// snapshotEntry is one index entry of a snapshot file.
//
//	|  crc  | indexSize | keySize | valueSize | index | key  | value |
//	| uint32|  uint16   | uint32  |  uint32   | []byte|[]byte|[]byte |
type snapshotEntry struct {
	index string
	key   []byte
	value []byte
}

func (e *snapshotEntry) size() int {
	return SnapshotEntryHeaderSize + len(e.index) + len(e.key) + len(e.value)
}

func (e *snapshotEntry) encode() []byte {
	buf := make([]byte, e.size())
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(e.index)))
	binary.LittleEndian.PutUint32(buf[6:10], uint32(len(e.key)))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(len(e.value)))
	off := SnapshotEntryHeaderSize
	off += copy(buf[off:], e.index)
	off += copy(buf[off:], e.key)
	copy(buf[off:], e.value)
	binary.LittleEndian.PutUint32(buf[0:4], crc32.ChecksumIEEE(buf[4:]))
	return buf
}

// decodeSnapshotEntry decodes the entry at the start of buf and returns its size.
func decodeSnapshotEntry(buf []byte) (*snapshotEntry, int, error) {
	if len(buf) < SnapshotEntryHeaderSize {
		return nil, 0, ErrSnapshotCorrupt
	}
	indexSize := int(binary.LittleEndian.Uint16(buf[4:6]))
	keySize := int(binary.LittleEndian.Uint32(buf[6:10]))
	valueSize := int(binary.LittleEndian.Uint32(buf[10:14]))
	total := SnapshotEntryHeaderSize + indexSize + keySize + valueSize
	if total > len(buf) {
		return nil, 0, ErrSnapshotCorrupt
	}
	if crc32.ChecksumIEEE(buf[4:total]) != binary.LittleEndian.Uint32(buf[0:4]) {
		return nil, 0, errors.Wrap(ErrSnapshotCorrupt, "crc mismatch")
	}
	off := SnapshotEntryHeaderSize
	e := &snapshotEntry{index: string(buf[off : off+indexSize])}
	off += indexSize
	// The mapping is released after loading, so keys and values are copied out.
	e.key = append([]byte(nil), buf[off:off+keySize]...)
	off += keySize
	e.value = append([]byte(nil), buf[off:off+valueSize]...)
	return e, total, nil
}

// WriteSnapshot writes every index of s to path while holding an exclusive
// lock on the snapshot.
func WriteSnapshot(path string, s *Store) (err error) {
	view, err := s.View()
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Clean(path) + lockSuffix)
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrapf(err, "lock snapshot %s", path)
	}
	if !locked {
		return ErrSnapshotLocked
	}
	defer func() {
		if unlockErr := lock.Unlock(); err == nil {
			err = unlockErr
		}
	}()

	fd, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create snapshot %s", path)
	}
	defer func() {
		if closeErr := fd.Close(); err == nil {
			err = closeErr
		}
	}()

	w := bufio.NewWriter(fd)
	header := make([]byte, snapshotHeaderSize)
	copy(header, SnapshotMagic)
	binary.LittleEndian.PutUint16(header[4:6], SnapshotVersion)
	if _, err = w.Write(header); err != nil {
		return err
	}
	for _, index := range s.Indexes() {
		tree, ok := view.trees[index]
		if !ok {
			continue
		}
		// An index with no entries is still recorded so reads find it.
		if tree.Count() == 0 {
			e := snapshotEntry{index: index}
			if _, err = w.Write(e.encode()); err != nil {
				return err
			}
			continue
		}
		for _, item := range tree.All() {
			e := snapshotEntry{index: index, key: item.Key, value: item.Value}
			if _, err = w.Write(e.encode()); err != nil {
				return err
			}
		}
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return fd.Sync()
}

// OpenSnapshot maps the snapshot at path read-only under a shared lock and
// loads it into a new Store.
func OpenSnapshot(path string) (_ *Store, err error) {
	lock := flock.New(filepath.Clean(path) + lockSuffix)
	locked, err := lock.TryRLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock snapshot %s", path)
	}
	if !locked {
		return nil, ErrSnapshotLocked
	}
	defer func() {
		if unlockErr := lock.Unlock(); err == nil {
			err = unlockErr
		}
	}()

	fd, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot %s", path)
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() < snapshotHeaderSize {
		return nil, ErrSnapshotCorrupt
	}

	m, err := mmap.Map(fd, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "map snapshot %s", path)
	}
	defer func() {
		if unmapErr := m.Unmap(); err == nil {
			err = unmapErr
		}
	}()

	return decodeSnapshot(m)
}

func decodeSnapshot(buf []byte) (*Store, error) {
	if string(buf[:4]) != SnapshotMagic {
		return nil, errors.Wrap(ErrSnapshotCorrupt, "bad magic")
	}
	if v := binary.LittleEndian.Uint16(buf[4:6]); v != SnapshotVersion {
		return nil, errors.Wrapf(ErrSnapshotCorrupt, "unsupported version %d", v)
	}

	s := New()
	for off := snapshotHeaderSize; off < len(buf); {
		e, n, err := decodeSnapshotEntry(buf[off:])
		if err != nil {
			return nil, errors.WithMessagef(err, "entry at offset %d", off)
		}
		off += n
		tree := s.treeLocked(e.index)
		if len(e.key) > 0 {
			tree.Insert(e.key, e.value)
		}
	}
	return s, nil
}
