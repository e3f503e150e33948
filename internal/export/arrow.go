package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"gonum.org/v1/gonum/mat"
)

// sampleColumn is the name of the leading utf8 column holding sample labels.
const sampleColumn = "sample"

// matrixSchema builds the Arrow schema for a labelled expression matrix:
// a utf8 sample column followed by one float64 column per gene.
func matrixSchema(genes []string) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(genes)+1)
	fields = append(fields, arrow.Field{Name: sampleColumn, Type: arrow.BinaryTypes.String})
	for _, g := range genes {
		fields = append(fields, arrow.Field{Name: g, Type: arrow.PrimitiveTypes.Float64})
	}
	return arrow.NewSchema(fields, nil)
}

// writeMatrix writes m as a single-record Arrow IPC file.
func writeMatrix(path string, samples, genes []string, m *mat.Dense) error {
	rows, cols := m.Dims()
	if rows != len(samples) || cols != len(genes) {
		return fmt.Errorf("matrix is %dx%d but labels are %dx%d", rows, cols, len(samples), len(genes))
	}

	mem := memory.NewGoAllocator()
	schema := matrixSchema(genes)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues(samples, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		b.Field(j + 1).(*array.Float64Builder).AppendValues(col, nil)
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating matrix file: %w", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return f.Close()
}

// readMatrix reads an Arrow IPC file written by writeMatrix.
func readMatrix(path string) (samples, genes []string, m *mat.Dense, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening matrix file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating arrow reader: %w", err)
	}
	defer r.Close()

	schema := r.Schema()
	if schema.NumFields() < 1 || schema.Field(0).Name != sampleColumn {
		return nil, nil, nil, fmt.Errorf("matrix file has no %q column", sampleColumn)
	}
	if r.NumRecords() != 1 {
		return nil, nil, nil, fmt.Errorf("expected 1 record, got %d", r.NumRecords())
	}

	rec, err := r.Record(0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading arrow record: %w", err)
	}

	rows := int(rec.NumRows())
	cols := int(rec.NumCols()) - 1

	labels, ok := rec.Column(0).(*array.String)
	if !ok {
		return nil, nil, nil, fmt.Errorf("column %q is not utf8", sampleColumn)
	}
	samples = make([]string, rows)
	for i := range samples {
		samples[i] = labels.Value(i)
	}

	genes = make([]string, cols)
	if cols == 0 {
		return samples, genes, nil, nil
	}
	m = mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		genes[j] = schema.Field(j + 1).Name
		values, ok := rec.Column(j + 1).(*array.Float64)
		if !ok {
			return nil, nil, nil, fmt.Errorf("column %q is not float64", genes[j])
		}
		m.SetCol(j, values.Float64Values())
	}

	return samples, genes, m, nil
}
