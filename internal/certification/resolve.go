// Package certification resolves a certification manifest against loaded
// systems and standards into a model.Certification.
//
// Resolution runs in two phases. First every system's claim index is folded
// into one global index with model.Merge, in natural system-key order. Then
// every required (standard, control) cell is filled from that read-only
// index and from the standards. Cells are independent and may be resolved
// in parallel; each task writes only its own slot and the slots are merged
// in cell order afterwards, so output and diagnostics are the same for any
// worker count.
package certification

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"masonry/internal/model"
	"masonry/internal/natsort"
	"masonry/internal/opencontrol"
)

// Options tunes Resolve.
type Options struct {
	// ExportDir, when set, receives relocated component artifacts under
	// <ExportDir>/<system>/<component>/.
	ExportDir string
	// Workers bounds concurrent cell resolution. Values below 1 mean 1.
	Workers int
	Logger  *slog.Logger
}

// Result is a resolved certification and the gaps found on the way.
type Result struct {
	Certification *model.Certification
	Diagnostics   *Diagnostics
}

type cell struct {
	standard string
	control  string
}

type cellResult struct {
	control     *model.Control
	diagnostics []Diagnostic
}

// GlobalIndex folds the claim index of every system, in natural key order.
func GlobalIndex(systems map[string]*opencontrol.System) model.JustificationMapping {
	index := model.JustificationMapping{}
	for _, key := range natsort.Keys(systems) {
		index = model.Merge(index, systems[key].Mapping())
	}
	return index
}

// Resolve builds the certification described by m. Missing justifications,
// standards, control metadata, verifications and artifacts are recorded as
// diagnostics and never fail the call. Errors are returned only for context
// cancellation and for I/O failures while relocating artifacts.
func Resolve(ctx context.Context, m *opencontrol.Manifest, systems map[string]*opencontrol.System, standards map[string]*opencontrol.Standard, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	cert := model.NewCertification(m.Name)
	diags := &Diagnostics{}

	// Skeleton: every required cell exists before anything is resolved.
	var cells []cell
	for _, std := range m.StandardKeys() {
		cert.Standards[std] = make(map[string]*model.Control, len(m.Standards[std]))
		if _, ok := standards[std]; !ok {
			diags.Add(Diagnostic{
				Kind:          MissingStandard,
				Certification: m.Name,
				Standard:      std,
				Detail:        fmt.Sprintf("%d required control(s) have no metadata", len(m.Standards[std])),
			})
		}
		for _, ctrl := range m.Standards[std] {
			cert.Standards[std][ctrl] = model.NewControl()
			cells = append(cells, cell{standard: std, control: ctrl})
		}
	}

	index := GlobalIndex(systems)
	logger.Debug("resolving certification", "certification", m.Name, "cells", len(cells), "claims", index.Len(), "workers", workers)

	results := make([]cellResult, len(cells))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cells {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := resolveCell(m.Name, c, index, systems, standards)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, c := range cells {
		cert.Standards[c.standard][c.control] = results[i].control
		diags.Add(results[i].diagnostics...)
	}

	// Components snapshot, after artifact relocation.
	for _, key := range natsort.Keys(systems) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap, missing, err := systems[key].Snapshot(opts.ExportDir)
		if err != nil {
			return nil, fmt.Errorf("export system %s: %w", key, err)
		}
		cert.Components[key] = snap
		for _, ref := range missing {
			diags.Add(Diagnostic{
				Kind:          MissingArtifact,
				Certification: m.Name,
				System:        ref.System,
				Component:     ref.Component,
				Detail:        ref.Location(),
			})
		}
	}

	diags.Add(CheckReferences(cert)...)
	return &Result{Certification: cert, Diagnostics: diags}, nil
}

func resolveCell(certName string, c cell, index model.JustificationMapping, systems map[string]*opencontrol.System, standards map[string]*opencontrol.Standard) (cellResult, error) {
	out := cellResult{control: model.NewControl()}

	for _, owner := range index.Lookup(c.standard, c.control) {
		sys, ok := systems[owner.System]
		if !ok {
			continue
		}
		comp, ok := sys.Component(owner.Component)
		if !ok {
			continue
		}
		j, err := comp.GetJustification(c.standard, c.control)
		if err != nil {
			return cellResult{}, err
		}
		out.control.Justifications = append(out.control.Justifications, j)
	}
	if len(out.control.Justifications) == 0 {
		out.diagnostics = append(out.diagnostics, Diagnostic{
			Kind:          MissingJustifications,
			Certification: certName,
			Standard:      c.standard,
			Control:       c.control,
		})
	}

	std, ok := standards[c.standard]
	if !ok {
		out.diagnostics = append(out.diagnostics, Diagnostic{
			Kind:          MissingControlInfo,
			Certification: certName,
			Standard:      c.standard,
			Control:       c.control,
			Detail:        "standard not loaded",
		})
		return out, nil
	}
	info, ok := std.Control(c.control)
	if !ok {
		out.diagnostics = append(out.diagnostics, Diagnostic{
			Kind:          MissingControlInfo,
			Certification: certName,
			Standard:      c.standard,
			Control:       c.control,
		})
		return out, nil
	}
	out.control.Meta.MergeFrom(info)
	return out, nil
}

// CheckReferences reports every justification reference naming a
// verification that the components snapshot does not contain.
func CheckReferences(cert *model.Certification) []Diagnostic {
	var out []Diagnostic
	for _, std := range cert.StandardKeys() {
		for _, ctrl := range cert.ControlKeys(std) {
			for _, j := range cert.Standards[std][ctrl].Justifications {
				for _, ref := range j.References {
					if ref.Verification == "" {
						continue
					}
					if _, ok := cert.Verification(ref); ok {
						continue
					}
					out = append(out, Diagnostic{
						Kind:          MissingCrossReference,
						Certification: cert.Name,
						Standard:      std,
						Control:       ctrl,
						System:        ref.System,
						Component:     ref.Component,
						Detail:        "verification " + ref.Verification,
					})
				}
			}
		}
	}
	return out
}
