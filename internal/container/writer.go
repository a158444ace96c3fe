package container

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Write writes a CBM container to w with the current format version.
//
// name and arch must fit their fixed-width slots; shorter values are
// NUL-padded. graphNodes is an opaque structural hint for the expansion
// capability and is not interpreted here.
func Write(w io.Writer, name, arch string, graphNodes uint32, seed []byte) error {
	if len(name) > NameSlotSize {
		return fmt.Errorf("%w: model name %d bytes, slot is %d", ErrSlotOverflow, len(name), NameSlotSize)
	}
	if len(arch) > ArchSlotSize {
		return fmt.Errorf("%w: architecture %d bytes, slot is %d", ErrSlotOverflow, len(arch), ArchSlotSize)
	}
	if len(seed) > MaxSeedSize {
		return fmt.Errorf("%w: %d bytes", ErrSeedTooLarge, len(seed))
	}

	order := binary.LittleEndian

	h := Header{
		Magic:   magicBytes,
		Version: CurrentVersion,
	}
	if err := binary.Write(w, order, &h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var m Metadata
	copy(m.NameSlot[:], name)
	copy(m.ArchSlot[:], arch)
	//nolint:gosec // G115: len(seed) <= MaxSeedSize, checked above.
	m.SeedSize = uint32(len(seed))
	m.GraphNodeCount = graphNodes
	if err := binary.Write(w, order, &m); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	if _, err := w.Write(seed); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}

	return nil
}

// WriteFile writes a CBM container to path, replacing any existing file.
//
//nolint:gosec // G304: path comes from trusted caller, not user input.
func WriteFile(path, name, arch string, graphNodes uint32, seed []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := Write(f, name, arch, graphNodes, seed); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}
