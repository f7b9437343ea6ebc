package usgsl1

import (
	"fmt"
	"strconv"

	"github.com/chryss/pygaarst/raster"
)

// landsatBands lists the permissible band labels per Landsat spacecraft
var landsatBands = map[string][]string{
	"L4": {"1", "2", "3", "4", "5", "6", "7"},
	"L5": {"1", "2", "3", "4", "5", "6", "7"},
	"L7": {"1", "2", "3", "4", "5", "6L", "6H", "7", "8"},
	"L8": {"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"},
}

func labelInRange(label string, min, max int) bool {
	num, err := strconv.Atoi(label)
	return err == nil && num >= min && num <= max
}

// hyperionBandIsCalibrated reports whether a Hyperion band label falls in the
// calibrated ranges (8-57 for VNIR, 77-224 for SWIR); see
// https://eo1.usgs.gov/sensors/hyperioncoverage
func hyperionBandIsCalibrated(label string) bool {
	return labelInRange(label, 8, 57) || labelInRange(label, 77, 224)
}

// Band represents one spectral channel's raster file within a scene
type Band struct {
	Label string
	Path  string
	Scene *Scene

	handle raster.Handle
}

// Raster opens the band's raster file through the scene's raster opener; the
// handle is cached on the band
func (b *Band) Raster() (raster.Handle, error) {
	if b.handle != nil {
		return b.handle, nil
	}
	if b.Scene == nil || b.Scene.opener == nil {
		return nil, fmt.Errorf("no raster opener configured for band %s", b.Label)
	}
	handle, err := b.Scene.opener(b.Path)
	if err != nil {
		return nil, err
	}
	b.handle = handle
	return handle, nil
}

// RadianceScaling returns the radiance gain and bias for this band from the
// scene metadata
func (b *Band) RadianceScaling() (gain float64, bias float64, err error) {
	if b.Scene == nil {
		return 0, 0, fmt.Errorf("band %s is not attached to a scene", b.Label)
	}
	return b.Scene.RadianceScaling(b.Label)
}
