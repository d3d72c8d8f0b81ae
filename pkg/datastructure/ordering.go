package datastructure

// Majorising is a partial order over cost vectors. a.Majorises(b) holds when a is greater than or
// equal to b in every tracked dimension. Two values may majorise neither each other.
type Majorising[T any] interface {
	comparable
	Majorises(other T) bool
}

// MajorisesStrict is Majorises without equality.
func MajorisesStrict[T Majorising[T]](a, b T) bool {
	return a != b && a.Majorises(b)
}

type Float64 float64

func (f Float64) Majorises(other Float64) bool { return f >= other }

type Int64 int64

func (i Int64) Majorises(other Int64) bool { return i >= other }

type Uint64 uint64

func (u Uint64) Majorises(other Uint64) bool { return u >= other }

type Int int

func (i Int) Majorises(other Int) bool { return i >= other }

// Pair majorises another pair when both fields do.
type Pair[A Majorising[A], B Majorising[B]] struct {
	First  A
	Second B
}

func NewPair[A Majorising[A], B Majorising[B]](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

func (p Pair[A, B]) Majorises(other Pair[A, B]) bool {
	return p.First.Majorises(other.First) && p.Second.Majorises(other.Second)
}

// Triple majorises another triple when all three fields do.
type Triple[A Majorising[A], B Majorising[B], C Majorising[C]] struct {
	First  A
	Second B
	Third  C
}

func NewTriple[A Majorising[A], B Majorising[B], C Majorising[C]](a A, b B, c C) Triple[A, B, C] {
	return Triple[A, B, C]{First: a, Second: b, Third: c}
}

func (t Triple[A, B, C]) Majorises(other Triple[A, B, C]) bool {
	return t.First.Majorises(other.First) &&
		t.Second.Majorises(other.Second) &&
		t.Third.Majorises(other.Third)
}
