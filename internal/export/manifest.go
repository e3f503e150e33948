package export

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/milescsmith/WGCNA/internal/constants"
	"gonum.org/v1/gonum/mat"
)

// FormatV1 is the current export directory layout version.
const FormatV1 = 1

// ErrChecksumMismatch is returned by Verify when a file no longer matches
// the checksum recorded in its manifest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Manifest describes an export directory. It is written last, so a directory
// without a manifest is an incomplete export.
type Manifest struct {
	Version        int               `json:"version"`
	CreatedAt      time.Time         `json:"created_at"`
	Seed           uint64            `json:"seed"`
	Samples        int               `json:"samples"`
	Genes          int               `json:"genes"`
	Modules        []ModuleEntry     `json:"modules"`
	MatrixChecksum string            `json:"matrix_checksum"`
	Files          map[string]string `json:"files"`
}

// ModuleEntry records a module's gene count in the manifest.
type ModuleEntry struct {
	Name       string  `json:"name"`
	Genes      int     `json:"genes"`
	EffectSize float64 `json:"effect_size"`
}

// MatrixChecksum hashes the matrix shape and the IEEE-754 bits of its
// elements in row-major order. Equal matrices always hash equally,
// independent of the file format they are stored in.
func MatrixChecksum(m mat.Matrix) string {
	h := sha256.New()
	r, c := m.Dims()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c))
	h.Write(buf[:])
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.At(i, j)))
			h.Write(buf[:])
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// fileChecksum computes the "sha256:" checksum of a file's contents.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", filepath.Base(path), err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, constants.ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest of an export directory without checking files.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, constants.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version != FormatV1 {
		return nil, fmt.Errorf("unsupported export version %d", m.Version)
	}
	return &m, nil
}

// Verify checks every file listed in the manifest against its recorded checksum.
func Verify(dir string) (*Manifest, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{
		constants.ExpressionFile,
		constants.EigengenesFile,
		constants.TraitsFile,
		constants.ModulesFile,
	} {
		expected, ok := m.Files[name]
		if !ok {
			return nil, fmt.Errorf("manifest has no entry for %s", name)
		}
		actual, err := fileChecksum(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if actual != expected {
			return nil, fmt.Errorf("%s: %w: expected %s, got %s", name, ErrChecksumMismatch, expected, actual)
		}
	}

	return m, nil
}
