package pak

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// Archive format errors.
var (
	ErrInvalidMagic       = errors.New("invalid pak magic")
	ErrUnsupportedVersion = errors.New("unsupported pak version")
	ErrNotFound           = errors.New("model not found")
)

const (
	pakMagic   = "MESHPAK\x00"
	pakVersion = 1
	headerSize = 28
)

// keyNamespace seeds the name-based UUIDs stored next to each key.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("meshbake.pak.key"))

// KeyDigest returns the stable 16-byte digest of a content key.
func KeyDigest(key string) uuid.UUID {
	return uuid.NewSHA1(keyNamespace, []byte(key))
}

// Header is the fixed-size start of a pak file.
type Header struct {
	Magic       [8]byte
	Version     uint32
	Count       uint32
	TableOffset uint32
	TableCSize  uint32
	TableUSize  uint32
}

// Entry describes one model in the archive table.
type Entry struct {
	Key              string
	Digest           uuid.UUID
	ID               ModelID
	Offset           uint32
	CompressedSize   uint32
	UncompressedSize uint32
}

// Save writes every registered model to w. level is a compress/zlib level.
func (s *Store) Save(w io.Writer, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blobs bytes.Buffer
	entries := make([]Entry, len(s.models))
	for i, model := range s.models {
		raw, err := model.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encoding %s: %w", s.names[i], err)
		}
		packed, err := compress(raw, level)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", s.names[i], err)
		}
		entries[i] = Entry{
			Key:              s.names[i],
			Digest:           KeyDigest(s.names[i]),
			ID:               ModelID(i),
			Offset:           uint32(headerSize + blobs.Len()),
			CompressedSize:   uint32(len(packed)),
			UncompressedSize: uint32(len(raw)),
		}
		blobs.Write(packed)
	}

	le := binary.LittleEndian
	var table []byte
	for _, e := range entries {
		table = append(table, e.Digest[:]...)
		var err error
		if table, err = appendString(table, e.Key); err != nil {
			return fmt.Errorf("key %s: %w", e.Key, err)
		}
		table = le.AppendUint32(table, uint32(e.ID))
		table = le.AppendUint32(table, e.Offset)
		table = le.AppendUint32(table, e.CompressedSize)
		table = le.AppendUint32(table, e.UncompressedSize)
	}
	packedTable, err := compress(table, level)
	if err != nil {
		return fmt.Errorf("compressing table: %w", err)
	}

	header := Header{
		Version:     pakVersion,
		Count:       uint32(len(entries)),
		TableOffset: uint32(headerSize + blobs.Len()),
		TableCSize:  uint32(len(packedTable)),
		TableUSize:  uint32(len(table)),
	}
	copy(header.Magic[:], pakMagic)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(blobs.Bytes()); err != nil {
		return fmt.Errorf("writing models: %w", err)
	}
	if _, err := w.Write(packedTable); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}

// WriteFile saves the store to path, creating parent directories.
func (s *Store) WriteFile(path string, level int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.Save(&buf, level); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive is an opened pak file.
type Archive struct {
	file    io.ReaderAt
	closer  io.Closer
	header  Header
	entries map[string]*Entry
	byID    map[ModelID]*Entry
}

// Open opens a pak file for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	archive, err := NewArchive(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	archive.closer = file
	return archive, nil
}

// NewArchive reads the header and table of a pak held by r.
func NewArchive(r io.ReaderAt) (*Archive, error) {
	a := &Archive{
		file:    r,
		entries: make(map[string]*Entry),
		byID:    make(map[ModelID]*Entry),
	}

	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readTable(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return a, nil
}

// Close closes the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Header returns the archive header.
func (a *Archive) Header() Header {
	return a.header
}

func (a *Archive) readHeader() error {
	sr := io.NewSectionReader(a.file, 0, headerSize)
	if err := binary.Read(sr, binary.LittleEndian, &a.header); err != nil {
		return ErrTruncated
	}
	if string(a.header.Magic[:]) != pakMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != pakVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readTable() error {
	data, err := a.inflate(a.header.TableOffset, a.header.TableCSize, a.header.TableUSize)
	if err != nil {
		return err
	}

	r := bytes.NewReader(data)
	for i := uint32(0); i < a.header.Count; i++ {
		e := &Entry{}
		if _, err := io.ReadFull(r, e.Digest[:]); err != nil {
			return ErrTruncated
		}
		if e.Key, err = readString(r); err != nil {
			return err
		}
		var id uint32
		if err := readAll(r, &id, &e.Offset, &e.CompressedSize, &e.UncompressedSize); err != nil {
			return err
		}
		e.ID = ModelID(id)

		if e.Digest != KeyDigest(e.Key) {
			return fmt.Errorf("entry %d: digest mismatch for %s", i, e.Key)
		}
		a.entries[e.Key] = e
		a.byID[e.ID] = e
	}
	return nil
}

func (a *Archive) inflate(offset, csize, usize uint32) ([]byte, error) {
	compressed := make([]byte, csize)
	if _, err := a.file.ReadAt(compressed, int64(offset)); err != nil {
		return nil, ErrTruncated
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, usize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, ErrTruncated
	}
	return out, nil
}

// List returns every key in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for key := range a.entries {
		result = append(result, key)
	}
	sort.Strings(result)
	return result
}

// Entries returns the table entries ordered by id.
func (a *Archive) Entries() []Entry {
	result := make([]Entry, 0, len(a.byID))
	for _, e := range a.byID {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Contains checks if a key exists.
func (a *Archive) Contains(key string) bool {
	_, ok := a.entries[key]
	return ok
}

// ID returns the model id stored under key.
func (a *Archive) ID(key string) (ModelID, bool) {
	e, ok := a.entries[key]
	if !ok {
		return 0, false
	}
	return e.ID, true
}

// Model decodes the model with the given id.
func (a *Archive) Model(id ModelID) (*Model, error) {
	e, ok := a.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	data, err := a.inflate(e.Offset, e.CompressedSize, e.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", e.Key, err)
	}

	m := &Model{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", e.Key, err)
	}
	return m, nil
}
