package tensor

import "math/rand"

// Zeros returns a tensor filled with the zero value of T.
func Zeros[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return New[T](backend, shape)
}

// Ones returns a tensor filled with one.
func Ones[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return Full[T](backend, shape, 1)
}

// Full returns a tensor with every element set to value.
func Full[T DType, B Backend](backend B, shape Shape, value T) *Tensor[T, B] {
	t := New[T](backend, shape)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Uniform returns a float32 tensor with elements drawn uniformly from
// [low, high) using the given source.
func Uniform[B Backend](backend B, rng *rand.Rand, shape Shape, low, high float32) *Tensor[float32, B] {
	t := New[float32](backend, shape)
	data := t.Data()
	for i := range data {
		data[i] = low + rng.Float32()*(high-low)
	}
	return t
}

// Randn returns a float32 tensor with elements drawn from a normal
// distribution with the given mean and standard deviation.
func Randn[B Backend](backend B, rng *rand.Rand, shape Shape, mean, std float32) *Tensor[float32, B] {
	t := New[float32](backend, shape)
	data := t.Data()
	for i := range data {
		data[i] = mean + float32(rng.NormFloat64())*std
	}
	return t
}
