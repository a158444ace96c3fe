// Copyright 2026 CBM Runtime. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package container provides CBM seed-container parsing and writing.
//
// A CBM file carries a compact seed payload from which a full parameter
// buffer is procedurally expanded at load time, instead of a serialized
// weight tensor. The format is a fixed binary layout: a 16-byte header with
// the "CBNQ" magic, a 104-byte metadata block and an opaque seed payload.
//
// Example:
//
//	file, err := container.ParseFile("model.cbm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Model: %s (%s), seed %d bytes\n",
//	    file.Metadata.Name(), file.Metadata.Architecture(), len(file.Seed))
package container

import (
	"io"

	"github.com/cbm-ml/cbm/internal/container"
)

// Format constants.
const (
	Magic          = container.Magic
	CurrentVersion = container.CurrentVersion
	HeaderSize     = container.HeaderSize
	MetadataSize   = container.MetadataSize
)

// Header is the fixed-size CBM file header.
type Header = container.Header

// Metadata is the fixed-size metadata block following the header.
type Metadata = container.Metadata

// File is a fully parsed CBM container. After a successful parse the seed
// buffer length always equals Metadata.SeedSize.
type File = container.File

// Common errors.
var (
	ErrInvalidMagic = container.ErrInvalidMagic
	ErrTruncated    = container.ErrTruncated
	ErrSeedTooLarge = container.ErrSeedTooLarge
	ErrSlotOverflow = container.ErrSlotOverflow
)

// Parse reads and parses a CBM container from the given reader.
//
// A magic mismatch fails before any bytes past the magic are consumed; a
// seed payload shorter than the declared size fails rather than silently
// truncating. There is no partial result: Parse returns either a fully
// populated File or an error.
func Parse(r io.Reader) (*File, error) {
	return container.Parse(r)
}

// ParseFile parses a CBM container from disk.
func ParseFile(path string) (*File, error) {
	return container.ParseFile(path)
}

// Write writes a CBM container to w with the current format version.
func Write(w io.Writer, name, arch string, graphNodes uint32, seed []byte) error {
	return container.Write(w, name, arch, graphNodes, seed)
}

// WriteFile writes a CBM container to path, replacing any existing file.
func WriteFile(path, name, arch string, graphNodes uint32, seed []byte) error {
	return container.WriteFile(path, name, arch, graphNodes, seed)
}
