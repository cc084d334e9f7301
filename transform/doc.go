// Package transform turns raw training records into normalized, augmented
// slots of a batch buffer.
//
// A record is either a byte-encoded pixel payload or a float feature vector in
// planar channel-major layout (channels × height × width). Transformation is:
//   - photometric jitter: a 256-entry lookup table combining a luminance shift
//     and a contrast stretch around a fixed pivot (byte data, cropped path only)
//   - spatial crop: random window in TRAIN, centered window in TEST
//   - optional horizontal mirror of the crop window
//   - mean subtraction (mean stored at full, uncropped resolution) and scale
//
// Random draws are taken from an explicit RandomState in a fixed order:
// luminance, contrast, crop row, crop column, mirror bit. A draw only happens
// when the corresponding option is enabled, so a fixed seed and fixed
// parameters always reproduce the same output.
//
// Example usage:
//
//	params := transform.DefaultParams()
//	params.CropSize = 227
//	params.Mirror = true
//	tr, err := transform.NewTransformer[float32](params, seed)
//	if err != nil {
//		return err
//	}
//	dst := make([]float32, batchSize*tr.SampleLen(3, 256, 256))
//	err = tr.Transform(i, sample, mean, dst)
package transform
