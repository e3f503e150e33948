package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/milescsmith/WGCNA/internal/constants"
	"github.com/milescsmith/WGCNA/internal/simulate"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeCSV writes header and rows to path.
func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return f.Close()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header", path)
	}
	return records, nil
}

// writeEigengenes writes one row per sample and one ME<module> column per module.
func writeEigengenes(path string, b *simulate.Bundle) error {
	names := b.Reference.Eigengenes.Names
	header := make([]string, 0, len(names)+1)
	header = append(header, "sample")
	for _, n := range names {
		header = append(header, constants.EigengenePrefix+n)
	}

	rows := make([][]string, len(b.Labels.Samples))
	for i, sample := range b.Labels.Samples {
		row := make([]string, 0, len(names)+1)
		row = append(row, sample)
		for _, v := range b.Reference.Eigengenes.Vectors {
			row = append(row, formatFloat(v[i]))
		}
		rows[i] = row
	}
	return writeCSV(path, header, rows)
}

// writeTraits writes the reference signal and trait of every sample.
func writeTraits(path string, b *simulate.Bundle) error {
	values := b.Reference.TraitValues()
	rows := make([][]string, len(b.Labels.Samples))
	for i, sample := range b.Labels.Samples {
		rows[i] = []string{
			sample,
			formatFloat(b.Reference.Signal[i]),
			b.Reference.Traits[i],
			formatFloat(values[i]),
		}
	}
	return writeCSV(path, []string{"sample", "signal", "trait", "value"}, rows)
}

// writeModules writes the module assignment of every gene.
func writeModules(path string, b *simulate.Bundle) error {
	rows := make([][]string, len(b.Labels.Genes))
	for j, gene := range b.Labels.Genes {
		rows[j] = []string{gene, b.Expression.Assignment[j]}
	}
	return writeCSV(path, []string{"gene", "module"}, rows)
}

// readTraits returns the trait label column of traits.csv.
func readTraits(path string) ([]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	traits := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			return nil, fmt.Errorf("traits row %v: expected at least 3 fields", rec)
		}
		if !constants.ValidTrait(rec[2]) {
			return nil, fmt.Errorf("traits row %v: unknown trait %q", rec, rec[2])
		}
		traits = append(traits, rec[2])
	}
	return traits, nil
}

// readModules returns the module column of modules.csv.
func readModules(path string) ([]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	assignment := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 2 {
			return nil, fmt.Errorf("modules row %v: expected 2 fields", rec)
		}
		assignment = append(assignment, rec[1])
	}
	return assignment, nil
}
