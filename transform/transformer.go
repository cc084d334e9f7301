package transform

import "fmt"

// columnMap maps a crop-window column to its destination column.
type columnMap func(w, cropSize int) int

func naturalColumn(w, _ int) int         { return w }
func mirroredColumn(w, cropSize int) int { return cropSize - 1 - w }

// TransformSample writes one normalized sample into its slot of dst.
//
// The slot is dst[batchItemID*n : (batchItemID+1)*n] where n is
// params.SampleLen of the sample dimensions; nothing outside it is touched.
// mean is laid out at the full, uncropped sample resolution. rng may be nil
// when params never draw; a draw from a nil rng fails with
// ErrPreconditionFailed before anything is written.
func TransformSample[T Float](batchItemID int, sample *RawSample, mean []T, params Params, rng *RandomState, dst []T) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := sample.Validate(); err != nil {
		return err
	}
	if batchItemID < 0 {
		return fmt.Errorf("%w: negative batch item id %d", ErrInvalidArgument, batchItemID)
	}

	channels, height, width := sample.Channels, sample.Height, sample.Width
	size := sample.Size()
	if len(mean) < size {
		return fmt.Errorf("%w: mean has %d values, sample needs %d", ErrInvalidArgument, len(mean), size)
	}
	sampleLen := params.SampleLen(channels, height, width)
	if len(dst) < (batchItemID+1)*sampleLen {
		return fmt.Errorf("%w: destination holds %d values, item %d needs %d",
			ErrInvalidArgument, len(dst), batchItemID, (batchItemID+1)*sampleLen)
	}

	cropSize := params.CropSize
	if cropSize > 0 {
		if !sample.IsEncoded() {
			return fmt.Errorf("%w: cropping needs byte pixel data", ErrUnsupportedFormat)
		}
		if cropSize > height || cropSize > width {
			return fmt.Errorf("%w: crop size %d exceeds sample %dx%d", ErrInvalidArgument, cropSize, height, width)
		}
	}

	var luminance, contrast T
	if params.LuminanceVary != 0 {
		v, err := rng.Gaussian(0, params.LuminanceVary)
		if err != nil {
			return fmt.Errorf("luminance draw: %w", err)
		}
		luminance = T(v)
	}
	if params.ContrastVary != 0 {
		v, err := rng.Uniform(-params.ContrastVary, params.ContrastVary)
		if err != nil {
			return fmt.Errorf("contrast draw: %w", err)
		}
		contrast = T(v)
	}
	table, err := BuildLookup(luminance, contrast)
	if err != nil {
		return err
	}

	slot := dst[batchItemID*sampleLen : (batchItemID+1)*sampleLen]
	scale := T(params.Scale)

	if cropSize == 0 {
		// Photometric jitter only applies on the cropped byte path.
		copyFull(slot, sample, mean, scale)
		return nil
	}

	hOff, wOff, err := cropOrigin(params.Phase, height, width, cropSize, rng)
	if err != nil {
		return err
	}
	cols := columnMap(naturalColumn)
	if params.Mirror {
		bit, err := rng.Uint32()
		if err != nil {
			return fmt.Errorf("mirror draw: %w", err)
		}
		if bit%2 == 1 {
			cols = mirroredColumn
		}
	}

	copyCrop(slot, sample, mean, &table, scale, cropSize, hOff, wOff, cols)
	return nil
}

// cropOrigin picks the top-left corner of the crop window: uniform in
// [0, dim-cropSize) for TRAIN, centered for TEST. A TRAIN window that fills
// a dimension still consumes its draw and lands at 0.
func cropOrigin(phase Phase, height, width, cropSize int, rng *RandomState) (int, int, error) {
	if phase != PhaseTrain {
		return (height - cropSize) / 2, (width - cropSize) / 2, nil
	}
	hOff, err := randomOffset(rng, height-cropSize)
	if err != nil {
		return 0, 0, fmt.Errorf("crop row draw: %w", err)
	}
	wOff, err := randomOffset(rng, width-cropSize)
	if err != nil {
		return 0, 0, fmt.Errorf("crop column draw: %w", err)
	}
	return hOff, wOff, nil
}

func randomOffset(rng *RandomState, span int) (int, error) {
	v, err := rng.Uint32()
	if err != nil {
		return 0, err
	}
	if span <= 0 {
		return 0, nil
	}
	return int(v % uint32(span)), nil
}

// copyCrop writes the remapped, mean-subtracted crop window. Mean is read at
// the source (uncropped) position.
func copyCrop[T Float](slot []T, sample *RawSample, mean []T, table *LookupTable[T], scale T, cropSize, hOff, wOff int, cols columnMap) {
	channels, height, width := sample.Channels, sample.Height, sample.Width
	data := sample.Data
	for c := 0; c < channels; c++ {
		for h := 0; h < cropSize; h++ {
			rowBase := (c*height+h+hOff)*width + wOff
			dstBase := (c*cropSize + h) * cropSize
			for w := 0; w < cropSize; w++ {
				src := rowBase + w
				slot[dstBase+cols(w, cropSize)] = (table[data[src]] - mean[src]) * scale
			}
		}
	}
}

// copyFull scales and mean-subtracts the whole sample, byte payload first,
// float payload otherwise.
func copyFull[T Float](slot []T, sample *RawSample, mean []T, scale T) {
	if sample.IsEncoded() {
		for j, b := range sample.Data {
			slot[j] = (T(b) - mean[j]) * scale
		}
		return
	}
	for j, v := range sample.FloatData {
		slot[j] = (T(v) - mean[j]) * scale
	}
}

// Transformer owns a configuration and the generator its transforms draw
// from. It is not safe for concurrent use; see TransformBatch for parallel
// batches.
type Transformer[T Float] struct {
	params Params
	seed   uint64
	rng    *RandomState
}

// NewTransformer validates params and creates the generator when params can
// draw from it.
func NewTransformer[T Float](params Params, seed uint64) (*Transformer[T], error) {
	t := &Transformer[T]{}
	if err := t.Reconfigure(params, seed); err != nil {
		return nil, err
	}
	return t, nil
}

// Reconfigure replaces the configuration and resets the generator. The
// generator is dropped when the new params never draw.
func (t *Transformer[T]) Reconfigure(params Params, seed uint64) error {
	if err := params.Validate(); err != nil {
		return err
	}
	t.params = params
	t.seed = seed
	t.rng = nil
	if params.NeedsRandom() {
		t.rng = NewRandomState(seed, 0)
	}
	Logger().Debug("transform: configured",
		"phase", params.Phase.String(),
		"crop_size", params.CropSize,
		"mirror", params.Mirror,
		"luminance_vary", params.LuminanceVary,
		"contrast_vary", params.ContrastVary,
		"random", t.rng != nil)
	return nil
}

// Params returns the active configuration.
func (t *Transformer[T]) Params() Params { return t.params }

// Seed returns the seed the generator was built from.
func (t *Transformer[T]) Seed() uint64 { return t.seed }

// Rand returns the owned generator, nil when the configuration never draws.
func (t *Transformer[T]) Rand() *RandomState { return t.rng }

// ForkRandom derives an independent generator for a worker or sample index.
// Returns nil when the configuration never draws.
func (t *Transformer[T]) ForkRandom(stream uint64) *RandomState {
	if t.rng == nil {
		return nil
	}
	rs, _ := t.rng.Fork(stream)
	return rs
}

// SampleLen returns the per-sample destination length for the given input
// dimensions.
func (t *Transformer[T]) SampleLen(channels, height, width int) int {
	return t.params.SampleLen(channels, height, width)
}

// Transform writes sample into slot batchItemID of dst, drawing from the
// owned generator.
func (t *Transformer[T]) Transform(batchItemID int, sample *RawSample, mean []T, dst []T) error {
	return TransformSample(batchItemID, sample, mean, t.params, t.rng, dst)
}
