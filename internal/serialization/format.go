package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "MXGA"
	FormatVersion   = 1
	HeaderAlignment = 64   // Align matrix data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	valueSize       = 8    // Bytes per float64 nonzero
)

// Flags for the .mxga format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// Header is the JSON header of an archive.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .mxga format
	CreatedAt     time.Time         `json:"created_at"`     // When the archive was written
	Matrices      []MatrixMeta      `json:"matrices"`       // Matrix metadata in file order
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// MatrixMeta describes one matrix: its compressed-column pattern and the location of its
// nonzeros in the data section.
type MatrixMeta struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Colind []int  `json:"colind"`
	Row    []int  `json:"row"`
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// alignedDataOffset returns the start of the data section for a header of n bytes.
func alignedDataOffset(n int64) int64 {
	pos := int64(FixedHeaderSize) + n
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
