package primitives

// Predicate is a binary comparison operator used by predicates and index ranges.
type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="

	case LessThan:
		return "<"

	case GreaterThan:
		return ">"

	case LessThanOrEqual:
		return "<="

	case GreaterThanOrEqual:
		return ">="

	case NotEqual:
		return "!="

	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether p is one of the six supported operators.
func (p Predicate) IsValid() bool {
	return p >= Equals && p <= NotEqual
}

// Flip returns the operator obtained by swapping the operands,
// so that "a < b" and "b > a" agree.
func (p Predicate) Flip() Predicate {
	switch p {
	case LessThan:
		return GreaterThan
	case GreaterThan:
		return LessThan
	case LessThanOrEqual:
		return GreaterThanOrEqual
	case GreaterThanOrEqual:
		return LessThanOrEqual
	default:
		return p
	}
}

// Apply evaluates "lhs OP rhs" for any pair of float64 quantities.
// Scalar ordering codes are passed as (code, 0); vector distances as
// (distance, threshold).
func (p Predicate) Apply(lhs, rhs float64) bool {
	switch p {
	case Equals:
		return lhs == rhs
	case LessThan:
		return lhs < rhs
	case GreaterThan:
		return lhs > rhs
	case LessThanOrEqual:
		return lhs <= rhs
	case GreaterThanOrEqual:
		return lhs >= rhs
	case NotEqual:
		return lhs != rhs
	default:
		return false
	}
}
