package pods

// Keep it lean; you can grow these later.

type Tensor[T ~float32 | ~float64] struct {
	Data    []T
	Shape   []int // row-major
	Strides []int
}

func NewTensor[T ~float32 | ~float64](shape ...int) Tensor[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return Tensor[T]{Data: make([]T, n), Shape: shape, Strides: rowMajorStrides(shape)}
}

// WrapTensor views data with the given shape. It panics when the element
// count does not match.
func WrapTensor[T ~float32 | ~float64](data []T, shape ...int) Tensor[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		panic("pods: tensor shape does not match data length")
	}
	return Tensor[T]{Data: data, Shape: shape, Strides: rowMajorStrides(shape)}
}

// Sample returns the slice holding item i along the leading dimension.
func (t Tensor[T]) Sample(i int) []T {
	if len(t.Shape) == 0 {
		return t.Data
	}
	step := t.Strides[0]
	return t.Data[i*step : (i+1)*step]
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}
