package simulate

import (
	"fmt"
	"strconv"

	"github.com/milescsmith/WGCNA/internal/constants"
	"gonum.org/v1/gonum/mat"
)

// Labels holds synthetic identifiers for matrix rows and columns.
type Labels struct {
	Samples []string
	Genes   []string
}

// LabelEntities names rows "Sample1".."SampleN" and columns "Gene1".."GeneM".
// It panics if the assignment length differs from the number of columns.
func LabelEntities(matrix mat.Matrix, assignment []string) Labels {
	rows, cols := matrix.Dims()
	if len(assignment) != cols {
		panic(fmt.Sprintf("simulate: %d module assignments for %d gene columns", len(assignment), cols))
	}
	return Labels{
		Samples: sequence(constants.SamplePrefix, rows),
		Genes:   sequence(constants.GenePrefix, cols),
	}
}

func sequence(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}
	return out
}
