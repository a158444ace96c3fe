package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Parse reads and parses a CBM container from the given reader.
func Parse(r io.Reader) (*File, error) {
	p := &parser{
		r:     r,
		order: binary.LittleEndian,
	}
	return p.parse()
}

// ParseFile parses a CBM container from disk.
//
//nolint:gosec // G304: path comes from trusted caller, not user input.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore close error on read-only file.
	}()

	// Get file size
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	file.FilePath = path
	file.FileSize = stat.Size()

	return file, nil
}

type parser struct {
	r     io.Reader
	order binary.ByteOrder
}

func (p *parser) parse() (*File, error) {
	file := &File{}

	// Read and validate header
	if err := p.parseHeader(&file.Header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	// Read metadata block
	if err := binary.Read(p.r, p.order, &file.Metadata); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", truncated(err))
	}

	// Sanity check before allocating the seed buffer.
	if file.Metadata.SeedSize > MaxSeedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSeedTooLarge, file.Metadata.SeedSize)
	}

	// Read seed payload; the declared size is a hard invariant, a short
	// read must fail rather than silently truncate.
	file.Seed = make([]byte, file.Metadata.SeedSize)
	if _, err := io.ReadFull(p.r, file.Seed); err != nil {
		return nil, fmt.Errorf("read seed: declared %d bytes: %w",
			file.Metadata.SeedSize, truncated(err))
	}

	return file, nil
}

func (p *parser) parseHeader(h *Header) error {
	// Read magic. Validation happens before any further bytes are read,
	// so a foreign file never yields a partial record.
	if err := binary.Read(p.r, p.order, &h.Magic); err != nil {
		return fmt.Errorf("read magic: %w", truncated(err))
	}
	if h.Magic != magicBytes {
		return fmt.Errorf("%w: got %q, want %q", ErrInvalidMagic, h.Magic[:], Magic)
	}

	// Read version
	if err := binary.Read(p.r, p.order, &h.Version); err != nil {
		return fmt.Errorf("read version: %w", truncated(err))
	}

	// Any version is accepted once the magic matches. The format carries
	// no compatibility negotiation.

	// Read flags (reserved, unused)
	if err := binary.Read(p.r, p.order, &h.Flags); err != nil {
		return fmt.Errorf("read flags: %w", truncated(err))
	}

	// Read reserved padding
	if err := binary.Read(p.r, p.order, &h.Reserved); err != nil {
		return fmt.Errorf("read reserved: %w", truncated(err))
	}

	return nil
}

// truncated maps end-of-file conditions to ErrTruncated while leaving other
// I/O errors untouched.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
