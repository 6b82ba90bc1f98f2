package estimate

// Sample is a single (element count, byte size) measurement point for one
// named cache and one storage tier. Samples are immutable, a remeasurement
// replaces the sample instead of mutating it.
type Sample struct {
	elements int
	bytesize int64
}

// NewSample creates a new Sample
func NewSample(elements int, bytesize int64) Sample {
	return Sample{
		elements: elements,
		bytesize: bytesize,
	}
}

// GetElements returns the number of elements in the sample
func (sample Sample) GetElements() int {
	return sample.elements
}

// GetByteSize returns the byte size measured for that number of elements
func (sample Sample) GetByteSize() int64 {
	return sample.bytesize
}

// Estimate returns the byte size extrapolated for the given number of
// elements. The sampled size is returned exactly when the count matches the
// sampled count, and an empty sample always extrapolates to zero. Scaling is
// integer arithmetic, truncating.
func (sample Sample) Estimate(elements int) int64 {
	if sample.elements == elements {
		return sample.bytesize
	}
	if sample.elements == 0 {
		return 0
	}
	return sample.bytesize * int64(elements) / int64(sample.elements)
}
