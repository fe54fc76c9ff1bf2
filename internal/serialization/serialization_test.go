package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries(t *testing.T) []Entry {
	t.Helper()
	dense, err := mx.NewDM(sparsity.Dense(2, 3), []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	diag, err := mx.NewDM(sparsity.Diag(3), []float64{-1.5, 0, 1e-300})
	require.NoError(t, err)
	return []Entry{{Name: "x", Value: dense}, {Name: "weights.diag", Value: diag}}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	entries := testEntries(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entries, map[string]string{"source": "test"}))
	assert.Equal(t, MagicBytes, buf.String()[:4])

	a, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "weights.diag"}, a.Names())
	assert.Equal(t, "test", a.Metadata()["source"])
	assert.Equal(t, FormatVersion, a.Header().FormatVersion)

	for _, e := range entries {
		got, ok := a.Get(e.Name)
		require.True(t, ok, e.Name)
		assert.True(t, got.Sparsity().Equal(e.Value.Sparsity()), e.Name)
		assert.Equal(t, e.Value.Data(), got.Data(), e.Name)
	}

	_, err = a.Lookup("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWrite_DataAlignment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testEntries(t), nil))

	raw := buf.Bytes()
	headerSize := int64(binary.LittleEndian.Uint64(raw[16:24]))
	dataSize := int64(binary.LittleEndian.Uint64(raw[24:32]))
	assert.Equal(t, int64(9*valueSize), dataSize)

	offset := alignedDataOffset(headerSize)
	assert.Zero(t, offset%HeaderAlignment)
	assert.Equal(t, offset+dataSize, int64(len(raw)))
	assert.Zero(t, binary.LittleEndian.Uint32(raw[8:12])&FlagHasMetadata, "no metadata flag without metadata")
}

func TestRead_Corruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testEntries(t), nil))
	good := buf.Bytes()

	corrupt := func(mutate func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return mutate(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"flipped data byte", corrupt(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }), ErrChecksumMismatch},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), ErrInvalidMagic},
		{"bad version", corrupt(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:8], 9); return b }), ErrUnsupportedVersion},
		{"huge header", corrupt(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[16:24], MaxHeaderSize+1); return b }), ErrHeaderTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := Read(bytes.NewReader(good[:len(good)-4]))
	assert.Error(t, err, "truncated data section")

	a, err := ReadWithOptions(bytes.NewReader(corrupt(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b })),
		ReaderOptions{Validation: ValidationStrict, SkipChecksumValidation: true})
	require.NoError(t, err)
	assert.Len(t, a.Names(), 2)
}

func TestWrite_Names(t *testing.T) {
	entries := testEntries(t)

	var buf bytes.Buffer
	err := Write(&buf, []Entry{entries[0], entries[0]}, nil)
	assert.True(t, errors.Is(err, ErrDuplicateName))

	err = Write(&buf, []Entry{{Name: "bad\x00name", Value: entries[0].Value}}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid_name", verr.Type)

	err = Write(&buf, []Entry{{Name: "", Value: entries[0].Value}}, nil)
	require.True(t, errors.As(err, &verr))
}

func TestValidateMatrixOffsets(t *testing.T) {
	tests := []struct {
		name     string
		matrices []MatrixMeta
		want     string
	}{
		{"ok", []MatrixMeta{
			{Name: "a", Row: []int{0, 1}, Offset: 0, Size: 16},
			{Name: "b", Row: []int{0}, Offset: 16, Size: 8},
		}, ""},
		{"overlap", []MatrixMeta{
			{Name: "a", Row: []int{0, 1}, Offset: 0, Size: 16},
			{Name: "b", Row: []int{0}, Offset: 8, Size: 8},
		}, "offset_overlap"},
		{"out of bounds", []MatrixMeta{{Name: "a", Row: []int{0, 1, 2, 3}, Offset: 0, Size: 32}}, "out_of_bounds"},
		{"negative", []MatrixMeta{{Name: "a", Offset: -8, Size: 0}}, "negative_offset"},
		{"size mismatch", []MatrixMeta{{Name: "a", Row: []int{0}, Offset: 0, Size: 16}}, "size_mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMatrixOffsets(tt.matrices, 24)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr.Type)
		})
	}
}

func TestValidateHeader_Levels(t *testing.T) {
	h := &Header{Matrices: []MatrixMeta{
		{Name: "a", Row: []int{0, 1}, Offset: 0, Size: 16},
		{Name: "b", Row: []int{0}, Offset: 8, Size: 8},
	}}
	assert.Error(t, ValidateHeader(h, 24, ValidationStrict))
	assert.NoError(t, ValidateHeader(h, 24, ValidationNormal))
	assert.NoError(t, ValidateHeader(h, 24, ValidationNone))

	h.Matrices[1].Name = "a"
	assert.Error(t, ValidateHeader(h, 24, ValidationNormal))
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.mxga")
	entries := testEntries(t)
	require.NoError(t, WriteFile(path, entries, nil))

	a, err := ReadFile(path)
	require.NoError(t, err)
	x, err := a.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, 4.0, x.At(1, 1))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mxga"))
	assert.Error(t, err)
}
