package controller

import (
	vmb "github.com/vmbkit/vmb-go"
)

// EvenFloor returns the largest value <= max that is a multiple of increment
// and even. If rounding down to a multiple of increment gives an odd value,
// one more increment is subtracted. increment must be positive.
func EvenFloor(max, increment int64) int64 {
	v := max - max%increment
	if v%2 != 0 {
		v -= increment
	}
	return v
}

// SetIntFeatureValueModulo2 sets the named integer feature of cam to the
// largest even value its range and increment allow, so that images of that
// geometry can be transformed. Any failing query is returned unchanged.
func SetIntFeatureValueModulo2(cam vmb.Camera, name string) error {
	feature, err := cam.FeatureByName(name)
	if err != nil {
		return err
	}
	min, max, err := feature.Range()
	if err != nil {
		return err
	}
	increment, err := feature.Increment()
	if err != nil {
		return err
	}
	if increment <= 0 {
		return vmb.StatusInvalidValue
	}
	v := EvenFloor(max, increment)
	if v < min {
		return vmb.StatusInvalidValue
	}
	return feature.SetValue(v)
}
