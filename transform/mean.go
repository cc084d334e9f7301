package transform

import "fmt"

// ComputeMean averages samples position by position into a full-resolution
// mean reference. Byte payloads are used when present, float payloads
// otherwise. All samples must share one shape.
func ComputeMean[T Float](samples []*RawSample) ([]T, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples to average", ErrInvalidArgument)
	}
	if _, err := batchSampleLen(DefaultParams(), samples); err != nil {
		return nil, err
	}

	size := samples[0].Size()
	sums := make([]float64, size)
	for i, s := range samples {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if s.IsEncoded() {
			for j, b := range s.Data {
				sums[j] += float64(b)
			}
			continue
		}
		for j, v := range s.FloatData {
			sums[j] += float64(v)
		}
	}

	mean := make([]T, size)
	n := float64(len(samples))
	for j, v := range sums {
		mean[j] = T(v / n)
	}
	return mean, nil
}

// ChannelMean expands one mean value per channel into a full-resolution
// mean reference of channels × height × width.
func ChannelMean[T Float](channels, height, width int, values ...float64) ([]T, error) {
	if len(values) != channels {
		return nil, fmt.Errorf("%w: %d channel means for %d channels", ErrInvalidArgument, len(values), channels)
	}
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidArgument, height, width)
	}
	plane := height * width
	mean := make([]T, channels*plane)
	for c, v := range values {
		for j := 0; j < plane; j++ {
			mean[c*plane+j] = T(v)
		}
	}
	return mean, nil
}
