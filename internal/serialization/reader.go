package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/pkg/errors"
)

// ReaderOptions configures archive reading.
type ReaderOptions struct {
	Validation             ValidationLevel
	SkipChecksumValidation bool
}

// DefaultReaderOptions returns strict validation with checksum verification.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{Validation: ValidationStrict}
}

// Archive is a fully loaded .mxga archive.
type Archive struct {
	header Header
	values map[string]mx.DM
}

// Read loads an archive with default options.
func Read(r io.Reader) (*Archive, error) {
	return ReadWithOptions(r, DefaultReaderOptions())
}

// ReadWithOptions loads an archive.
func ReadWithOptions(r io.Reader, opts ReaderOptions) (*Archive, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, errors.Wrap(err, "failed to read fixed header")
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, errors.Wrapf(ErrInvalidMagic, "got %q", fixed[0:4])
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, want %d", v, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if headerSize > MaxHeaderSize {
		return nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, errors.Wrap(err, "failed to read header JSON")
	}
	padding := alignedDataOffset(int64(headerSize)) - FixedHeaderSize - int64(headerSize)
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, errors.Wrap(err, "failed to skip header padding")
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(dataSize)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read matrix data")
	}
	if uint64(len(data)) != dataSize {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "data section has %d of %d bytes", len(data), dataSize)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(headerJSON, data), stored); err != nil {
			return nil, err
		}
	}

	a := &Archive{values: make(map[string]mx.DM)}
	if err := json.Unmarshal(headerJSON, &a.header); err != nil {
		return nil, errors.Wrap(err, "failed to parse header JSON")
	}
	if err := ValidateHeader(&a.header, int64(dataSize), opts.Validation); err != nil {
		return nil, err
	}

	for _, m := range a.header.Matrices {
		dm, err := decodeMatrix(m, data)
		if err != nil {
			return nil, errors.WithMessagef(err, "matrix %q", m.Name)
		}
		a.values[m.Name] = dm
	}
	return a, nil
}

// ReadFile loads the archive stored at path.
func ReadFile(path string) (*Archive, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return Read(file)
}

func decodeMatrix(m MatrixMeta, data []byte) (mx.DM, error) {
	sp, err := sparsity.New(m.Rows, m.Cols, m.Colind, m.Row)
	if err != nil {
		return mx.DM{}, err
	}
	if m.Offset < 0 || m.Offset+int64(sp.NNZ())*valueSize > int64(len(data)) {
		return mx.DM{}, &ValidationError{Type: "out_of_bounds", Matrix: m.Name, Details: "data outside the data section"}
	}
	values := make([]float64, sp.NNZ())
	for k := range values {
		off := m.Offset + int64(k)*valueSize
		values[k] = math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+valueSize]))
	}
	return mx.NewDM(sp, values)
}

// Header returns the archive header.
func (a *Archive) Header() Header { return a.header }

// Metadata returns the metadata map from the header.
func (a *Archive) Metadata() map[string]string { return a.header.Metadata }

// Names returns the matrix names in file order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.header.Matrices))
	for i, m := range a.header.Matrices {
		names[i] = m.Name
	}
	return names
}

// Get returns the matrix stored under name.
func (a *Archive) Get(name string) (mx.DM, bool) {
	dm, ok := a.values[name]
	return dm, ok
}

// Lookup is like Get but reports a missing matrix as ErrNotFound.
func (a *Archive) Lookup(name string) (mx.DM, error) {
	dm, ok := a.values[name]
	if !ok {
		return mx.DM{}, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return dm, nil
}
