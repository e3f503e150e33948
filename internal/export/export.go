// Package export writes simulation bundles to a directory and reads them back.
//
// An export directory holds:
//
//	expression.arrow  samples x genes matrix (Arrow IPC file)
//	eigengenes.csv    module eigengenes per sample
//	traits.csv        reference signal and trait per sample
//	modules.csv       module assignment per gene
//	manifest.json     shape, seed, module counts and a sha256 per file
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/milescsmith/WGCNA/internal/constants"
	"github.com/milescsmith/WGCNA/internal/simulate"
	"gonum.org/v1/gonum/mat"
)

// Dataset is an export directory read back into memory.
type Dataset struct {
	Manifest   *Manifest
	Samples    []string
	Genes      []string
	Matrix     *mat.Dense
	Traits     []string
	Assignment []string
}

// Write exports b into dir, creating it if needed. Existing export files are
// overwritten. The manifest is written last.
func Write(dir string, b *simulate.Bundle) (*Manifest, error) {
	if b == nil || b.Expression == nil || b.Reference == nil {
		return nil, fmt.Errorf("incomplete bundle")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	// Remove a stale manifest so a failed write never looks complete.
	if err := os.Remove(filepath.Join(dir, constants.ManifestFile)); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing old manifest: %w", err)
	}

	steps := []struct {
		name  string
		write func(path string) error
	}{
		{constants.ExpressionFile, func(p string) error {
			return writeMatrix(p, b.Labels.Samples, b.Labels.Genes, b.Expression.Matrix)
		}},
		{constants.EigengenesFile, func(p string) error { return writeEigengenes(p, b) }},
		{constants.TraitsFile, func(p string) error { return writeTraits(p, b) }},
		{constants.ModulesFile, func(p string) error { return writeModules(p, b) }},
	}

	files := make(map[string]string, len(steps))
	for _, step := range steps {
		path := filepath.Join(dir, step.name)
		if err := step.write(path); err != nil {
			return nil, fmt.Errorf("writing %s: %w", step.name, err)
		}
		sum, err := fileChecksum(path)
		if err != nil {
			return nil, err
		}
		files[step.name] = sum
	}

	m := &Manifest{
		Version:        FormatV1,
		CreatedAt:      time.Now().UTC(),
		Seed:           b.Seed,
		Samples:        len(b.Labels.Samples),
		Genes:          len(b.Labels.Genes),
		MatrixChecksum: MatrixChecksum(b.Expression.Matrix),
		Files:          files,
	}
	for _, spec := range b.Config.Modules {
		m.Modules = append(m.Modules, ModuleEntry{
			Name:       spec.Name,
			Genes:      b.Expression.Count(spec.Name),
			EffectSize: spec.EffectSize,
		})
	}

	if err := writeManifest(dir, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Read verifies dir and loads the matrix, traits and module assignment.
func Read(dir string) (*Dataset, error) {
	m, err := Verify(dir)
	if err != nil {
		return nil, err
	}

	samples, genes, matrix, err := readMatrix(filepath.Join(dir, constants.ExpressionFile))
	if err != nil {
		return nil, err
	}
	if len(samples) != m.Samples || len(genes) != m.Genes {
		return nil, fmt.Errorf("matrix is %dx%d, manifest says %dx%d", len(samples), len(genes), m.Samples, m.Genes)
	}
	if matrix != nil && MatrixChecksum(matrix) != m.MatrixChecksum {
		return nil, fmt.Errorf("matrix values: %w", ErrChecksumMismatch)
	}

	traits, err := readTraits(filepath.Join(dir, constants.TraitsFile))
	if err != nil {
		return nil, err
	}
	assignment, err := readModules(filepath.Join(dir, constants.ModulesFile))
	if err != nil {
		return nil, err
	}
	if len(traits) != len(samples) {
		return nil, fmt.Errorf("%d traits for %d samples", len(traits), len(samples))
	}
	if len(assignment) != len(genes) {
		return nil, fmt.Errorf("%d module assignments for %d genes", len(assignment), len(genes))
	}

	return &Dataset{
		Manifest:   m,
		Samples:    samples,
		Genes:      genes,
		Matrix:     matrix,
		Traits:     traits,
		Assignment: assignment,
	}, nil
}

// ModuleNames returns the distinct module labels of the dataset, unassigned last.
func (d *Dataset) ModuleNames() []string {
	var names []string
	hasGrey := false
	for _, a := range d.Assignment {
		if a == constants.UnassignedModule {
			hasGrey = true
			continue
		}
		if !slices.Contains(names, a) {
			names = append(names, a)
		}
	}
	if hasGrey {
		names = append(names, constants.UnassignedModule)
	}
	return names
}
