package sx

// Algebra provides the arithmetic of Elem as methods, for use by code that is generic over
// its scalar type.
type Algebra struct{}

// Zero returns the additive identity.
func (Algebra) Zero() Elem { return Zero() }

// Add returns a+b.
func (Algebra) Add(a, b Elem) Elem { return Add(a, b) }

// Sub returns a-b.
func (Algebra) Sub(a, b Elem) Elem { return Sub(a, b) }

// Mul returns a*b.
func (Algebra) Mul(a, b Elem) Elem { return Mul(a, b) }

// Neg returns -a.
func (Algebra) Neg(a Elem) Elem { return Neg(a) }
