// Copyright 2026 CBM Runtime. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides the CBM model lifecycle: parse, materialize,
// destroy.
//
// A Model is created by Load from a CBM container, expanded into device
// memory by a Materializer and torn down exactly once by Destroy (which
// tolerates repeated calls). The expansion capability is injectable, so the
// pipeline can be driven by the device kernel or by a software substitute.
//
// Example:
//
//	dev, err := device.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
//	m, err := model.Load("model.cbm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Destroy()
//
//	mz := model.NewMaterializer(dev)
//	if err := mz.Materialize(m, 7_000_000_000); err != nil {
//	    log.Fatal(err)
//	}
package model

import (
	"github.com/cbm-ml/cbm/internal/device"
	"github.com/cbm-ml/cbm/internal/model"
)

// Model aggregates a parsed container record with its device state.
type Model = model.Model

// Materializer expands parsed models into device-resident weight buffers.
type Materializer = model.Materializer

// Geometry is the one-dimensional launch decomposition for an expansion
// dispatch.
type Geometry = model.Geometry

// Expander is the injectable expansion capability.
type Expander = model.Expander

// ErrExpand reports a failure of the expansion capability itself.
var ErrExpand = model.ErrExpand

// Load parses a CBM container from disk into a fresh Model with no device
// state attached.
func Load(path string) (*Model, error) {
	return model.Load(path)
}

// NewMaterializer creates a materializer using the device's unfold kernel as
// its expansion capability.
func NewMaterializer(dev *device.Device) *Materializer {
	return model.NewMaterializer(dev)
}

// NewMaterializerWith creates a materializer with an injected expansion
// capability.
func NewMaterializerWith(dev *device.Device, exp Expander) *Materializer {
	return model.NewMaterializerWith(dev, exp)
}

// NewGeometry computes the dispatch geometry covering paramCount outputs.
func NewGeometry(paramCount int) Geometry {
	return model.NewGeometry(paramCount)
}
