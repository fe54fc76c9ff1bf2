package mx

// OpCode identifies the concrete operation of a node.
type OpCode int

// Operation codes.
const (
	OpSymbol OpCode = iota
	OpConst
	OpReshape
	OpSubRef
	OpEmbed
	OpAdd
	OpSub
	OpMul
	OpNeg
)

var opNames = [...]string{
	OpSymbol:  "symbol",
	OpConst:   "const",
	OpReshape: "reshape",
	OpSubRef:  "subref",
	OpEmbed:   "embed",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpNeg:     "neg",
}

// String returns the lower-case name of the operation.
func (op OpCode) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}
