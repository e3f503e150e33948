// Package simulate generates synthetic gene expression data with a known
// co-expression module structure, for use as fixtures by weighted correlation
// network analysis tooling.
//
// A run draws a primary latent vector, mixes it into a reference signal,
// derives one eigengene per module with a controlled correlation, and then
// builds each gene column around its module eigengene (or as pure noise for
// background genes). Every draw comes from an explicit Stream, so two runs
// with the same Config and seed are bit-for-bit identical and independent
// runs never share random state.
//
// Draw order for a full run:
//
//	R0 (primary latent vector)
//	reference signal noise
//	mixing noise for each non-primary module, declared order
//	per-gene noise, module by module, gene by gene
//	background genes last
//
// Usage:
//
//	bundle, err := simulate.Simulate(simulate.DefaultConfig(), 1)
//	if err != nil {
//	    return err
//	}
//	rows, cols := bundle.Expression.Matrix.Dims()
package simulate
