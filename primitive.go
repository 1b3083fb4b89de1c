package strand

// Primitive channel constructors default to unbounded (capacity -1). Go's
// generics make these thin wrappers rather than a separate dispatch path
// per numeric kind.

func NewInt32Channel(opts ...ChannelOption) (*Channel[int32], error) {
	return newPrimitiveChannel[int32](opts...)
}

func NewInt64Channel(opts ...ChannelOption) (*Channel[int64], error) {
	return newPrimitiveChannel[int64](opts...)
}

func NewFloat32Channel(opts ...ChannelOption) (*Channel[float32], error) {
	return newPrimitiveChannel[float32](opts...)
}

func NewFloat64Channel(opts ...ChannelOption) (*Channel[float64], error) {
	return newPrimitiveChannel[float64](opts...)
}

func newPrimitiveChannel[T any](opts ...ChannelOption) (*Channel[T], error) {
	all := make([]ChannelOption, 0, len(opts)+1)
	all = append(all, WithCapacity(-1))
	all = append(all, opts...)
	return NewChannel[T](all...)
}
