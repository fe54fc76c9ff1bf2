// Package serialization stores named numeric matrices in the .mxga archive format.
//
// An archive keeps every matrix together with its sparsity pattern, so values written from
// a DM come back with the same structure:
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "MXGA"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: reserved]
//	  0x10 [8 bytes: Header Size (uint64 LE)]
//	  0x18 [8 bytes: Data Size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of header and data]
//	  0x40 [Header: JSON metadata]
//	       [Nonzero data: float64 LE, 64-byte aligned]
//
// Example usage:
//
//	err := serialization.WriteFile("inputs.mxga", []serialization.Entry{
//	    {Name: "x", Value: x},
//	}, map[string]string{"source": "demo"})
//
//	archive, err := serialization.ReadFile("inputs.mxga")
//	x, ok := archive.Get("x")
package serialization
