// Package container provides CBM seed-container parsing and writing.
//
// A CBM file is a compact description of a generative model: instead of a
// full weight tensor it carries a small opaque "seed" payload from which the
// parameter buffer is procedurally expanded at load time.
//
// File layout (little-endian, no padding, no trailer):
//
//	offset 0    magic            4 bytes  "CBNQ"
//	offset 4    version          u16      high byte = major, low byte = minor
//	offset 6    flags            u16      reserved
//	offset 8    reserved         u64      padding
//	offset 16   model_name       64 bytes fixed-width text slot
//	offset 80   architecture     32 bytes fixed-width text slot
//	offset 112  seed_size        u32      byte length of the payload
//	offset 116  graph_node_count u32      structural hint for expansion
//	offset 120  seed payload     seed_size bytes, opaque
package container

import "bytes"

// Format constants.
const (
	// Magic identifies a CBM container file.
	Magic = "CBNQ"

	// CurrentVersion is the format version written by this package (1.0).
	CurrentVersion uint16 = 0x0100

	// HeaderSize is the fixed byte size of the header block.
	HeaderSize = 16

	// MetadataSize is the fixed byte size of the metadata block.
	MetadataSize = 104

	// NameSlotSize and ArchSlotSize are the fixed-width text slot sizes.
	NameSlotSize = 64
	ArchSlotSize = 32

	// MaxSeedSize caps the declared seed payload size (1 GiB).
	MaxSeedSize = 1 << 30
)

// magicBytes is Magic as a comparable array.
var magicBytes = [4]byte{'C', 'B', 'N', 'Q'}

// Header is the fixed-size file header.
type Header struct {
	Magic    [4]byte
	Version  uint16
	Flags    uint16
	Reserved uint64
}

// Major returns the major format version (high byte).
func (h Header) Major() int { return int(h.Version >> 8) }

// Minor returns the minor format version (low byte).
func (h Header) Minor() int { return int(h.Version & 0xFF) }

// Metadata is the fixed-size metadata block following the header.
//
// The text slots are not guaranteed to be NUL-terminated by the format;
// use Name and Architecture for a bounds-safe decode.
type Metadata struct {
	NameSlot       [NameSlotSize]byte
	ArchSlot       [ArchSlotSize]byte
	SeedSize       uint32
	GraphNodeCount uint32
}

// Name decodes the model name slot: the bytes up to the first NUL,
// or the full slot if no terminator is present.
func (m *Metadata) Name() string { return decodeSlot(m.NameSlot[:]) }

// Architecture decodes the architecture slot.
func (m *Metadata) Architecture() string { return decodeSlot(m.ArchSlot[:]) }

func decodeSlot(slot []byte) string {
	if i := bytes.IndexByte(slot, 0); i >= 0 {
		return string(slot[:i])
	}
	return string(slot)
}

// File is a fully parsed CBM container.
// After a successful parse, len(Seed) always equals Metadata.SeedSize.
type File struct {
	Header   Header
	Metadata Metadata
	Seed     []byte

	// File info (only set by ParseFile)
	FilePath string
	FileSize int64
}
