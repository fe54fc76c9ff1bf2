package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"time"

	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/pkg/errors"
)

// Entry is one named matrix to store.
type Entry struct {
	Name  string
	Value mx.DM
}

// Write stores the entries, in order, followed by optional metadata.
func Write(w io.Writer, entries []Entry, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var data bytes.Buffer
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := ValidateMatrixName(e.Name); err != nil {
			return err
		}
		if _, dup := seen[e.Name]; dup {
			return errors.Wrapf(ErrDuplicateName, "%q", e.Name)
		}
		seen[e.Name] = struct{}{}

		sp := e.Value.Sparsity()
		values := e.Value.Data()
		header.Matrices = append(header.Matrices, MatrixMeta{
			Name:   e.Name,
			Rows:   sp.Rows(),
			Cols:   sp.Cols(),
			Colind: sp.Colind(),
			Row:    sp.Row(),
			Offset: int64(data.Len()),
			Size:   int64(len(values)) * valueSize,
		})
		var buf [valueSize]byte
		for _, v := range values {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			data.Write(buf[:])
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	sum := ComputeChecksum(headerJSON, data.Bytes())
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], sum[:])

	headerLen := int64(len(headerJSON))
	padding := alignedDataOffset(headerLen) - FixedHeaderSize - headerLen

	for _, chunk := range [][]byte{fixed, headerJSON, make([]byte, padding), data.Bytes()} {
		if _, err := w.Write(chunk); err != nil {
			return errors.Wrap(err, "failed to write archive")
		}
	}
	return nil
}

// WriteFile stores the entries in a new file at path.
func WriteFile(path string, entries []Entry, metadata map[string]string) (err error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()
	return Write(file, entries, metadata)
}
