// Package usgsl1 provides an object model for multi- and hyperspectral
// satellite imagery scenes distributed as Level 1 (at-sensor calibrated
// scaled radiance) data by USGS portals: Landsat 4/5 TM, Landsat 7 ETM+,
// Landsat 8 OLI/TIRS, EO-1 ALI and EO-1 Hyperion.
//
// A scene is a directory bundling all raster band files and one MTL metadata
// file for a single acquisition. Band attributes resolve lazily from the
// parsed metadata tree; pixel access is delegated to an injected raster.Opener.
package usgsl1

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chryss/pygaarst/mtl"
	"github.com/chryss/pygaarst/raster"
	"github.com/chryss/pygaarst/util"
)

// Platform identifies the sensor family a scene comes from
type Platform int

// Supported platforms
const (
	Landsat Platform = iota
	ALI
	Hyperion
)

func (p Platform) String() string {
	switch p {
	case Landsat:
		return "Landsat"
	case ALI:
		return "ALI"
	case Hyperion:
		return "Hyperion"
	}
	return "unknown"
}

// Scene is a container for one satellite overpass/acquisition: a directory of
// band raster files plus the parsed MTL metadata
type Scene struct {
	Dirname    string
	Platform   Platform
	Meta       *mtl.Params // the L1_METADATA_FILE group
	Spacecraft string      // normalized, e.g. "L8"
	Sensor     string
	// Infix is inserted into band file names just before the extension, to
	// address pre-processed versions of the band rasters
	Infix string

	newMetaFormat bool
	opener        raster.Opener
	diag          util.LogContext
	bands         map[string]*Band
}

// OpenLandsat opens a Landsat TM/ETM+/OLI-TIRS scene directory
func OpenLandsat(ctx util.LogContext, dirname string, opener raster.Opener, opts ...mtl.Option) (*Scene, error) {
	scene, err := openScene(ctx, dirname, Landsat, opener, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := landsatBands[scene.Spacecraft]; !ok {
		util.LogAlert(ctx, fmt.Sprintf(
			"Landsat scene was opened with unrecognized platform ID: %s.", scene.Spacecraft))
	}
	return scene, nil
}

// OpenALI opens an EO-1 ALI scene directory
func OpenALI(ctx util.LogContext, dirname string, opener raster.Opener, opts ...mtl.Option) (*Scene, error) {
	return openEO1Scene(ctx, dirname, ALI, opener, opts)
}

// OpenHyperion opens an EO-1 Hyperion scene directory
func OpenHyperion(ctx util.LogContext, dirname string, opener raster.Opener, opts ...mtl.Option) (*Scene, error) {
	return openEO1Scene(ctx, dirname, Hyperion, opener, opts)
}

func openEO1Scene(ctx util.LogContext, dirname string, platform Platform, opener raster.Opener, opts []mtl.Option) (*Scene, error) {
	scene, err := openScene(ctx, dirname, platform, opener, opts)
	if err != nil {
		return nil, err
	}
	if scene.Spacecraft == "EO1" && !strings.EqualFold(scene.Sensor, platform.String()) {
		util.LogAlert(ctx, fmt.Sprintf(
			"%s scene was opened for data from sensor %s.", platform, scene.Sensor))
	}
	return scene, nil
}

func openScene(ctx util.LogContext, dirname string, platform Platform, opener raster.Opener, opts []mtl.Option) (*Scene, error) {
	metadata, err := mtl.Parse(dirname, opts...)
	if err != nil {
		return nil, err
	}
	meta, ok := metadata.Group("L1_METADATA_FILE")
	if !ok {
		return nil, fmt.Errorf("metadata from %s could not be read, please check your dataset", dirname)
	}
	product, ok := meta.Group("PRODUCT_METADATA")
	if !ok {
		return nil, fmt.Errorf("metadata from %s has no PRODUCT_METADATA group", dirname)
	}
	spacecraft, err := product.String("SPACECRAFT_ID")
	if err != nil {
		return nil, fmt.Errorf("could not determine spacecraft for %s: %v", dirname, err)
	}
	sensor, err := product.String("SENSOR_ID")
	if err != nil {
		return nil, fmt.Errorf("could not determine sensor for %s: %v", dirname, err)
	}

	// USGS changed the Landsat metadata layout in 2012; the old format keys
	// band file names as BANDN_FILE_NAME rather than FILE_NAME_BAND_N
	newMetaFormat := true
	if info, ok := meta.Group("METADATA_FILE_INFO"); ok {
		if _, err := info.String("PROCESSING_SOFTWARE_VERSION"); err != nil {
			newMetaFormat = false
		}
	} else {
		newMetaFormat = false
	}

	return &Scene{
		Dirname:       dirname,
		Platform:      platform,
		Meta:          meta,
		Spacecraft:    normalizeSpacecraftID(spacecraft),
		Sensor:        sensor,
		newMetaFormat: newMetaFormat,
		opener:        opener,
		diag:          ctx,
		bands:         map[string]*Band{},
	}, nil
}

// normalizeSpacecraftID shortens Landsat SPACECRAFT_ID fields:
// "LANDSAT_8" -> "L8", "Landsat5" -> "L5"
func normalizeSpacecraftID(spid string) string {
	if strings.HasPrefix(strings.ToUpper(spid), "LANDSAT") {
		return strings.ToUpper(spid[:1] + spid[len(spid)-1:])
	}
	return spid
}

// Band returns the named band of the scene, constructing it on first access.
// Valid labels depend on the platform and spacecraft: "1" through "11" plus
// "6L"/"6H" for Landsat, "1" through "10" for ALI, "1" through "242" for
// Hyperion.
func (s *Scene) Band(label string) (*Band, error) {
	label = strings.ToUpper(label)
	if band, ok := s.bands[label]; ok {
		return band, nil
	}
	if err := s.validateBandLabel(label); err != nil {
		return nil, err
	}

	product, _ := s.Meta.Group("PRODUCT_METADATA")
	filename, err := product.String(s.bandFileKey(label))
	if err != nil {
		return nil, fmt.Errorf("no band file recorded for band %s of scene %s: %v", label, s.Dirname, err)
	}
	ext := filepath.Ext(filename)
	filename = filename[:len(filename)-len(ext)] + s.Infix + ext

	band := &Band{
		Label: label,
		Path:  filepath.Join(s.Dirname, filename),
		Scene: s,
	}
	s.bands[label] = band
	return band, nil
}

func (s *Scene) validateBandLabel(label string) error {
	switch s.Platform {
	case Landsat:
		permissible, ok := landsatBands[s.Spacecraft]
		if !ok {
			return fmt.Errorf("unknown Landsat spacecraft %s", s.Spacecraft)
		}
		if !contains(permissible, label) {
			return fmt.Errorf("spacecraft %s does not have a band %s, permissible band labels are %s",
				s.Spacecraft, label, strings.Join(permissible, ", "))
		}
	case ALI:
		if !labelInRange(label, 1, 10) {
			return fmt.Errorf("EO-1 ALI does not have a band %s, permissible band labels are between 1 and 10", label)
		}
	case Hyperion:
		if !labelInRange(label, 1, 242) {
			return fmt.Errorf("EO-1 Hyperion does not have a band %s, permissible band labels are between 1 and 242", label)
		}
		if !hyperionBandIsCalibrated(label) {
			util.LogAlert(s.diag, fmt.Sprintf("Hyperion band %s is not calibrated.", label))
		}
	}
	return nil
}

// bandFileKey maps a band label to the PRODUCT_METADATA key holding the band's
// file name. Landsat 7 has low and high gain thermal bands 6, with different
// label encodings in the two metadata formats.
func (s *Scene) bandFileKey(label string) string {
	if s.newMetaFormat {
		bandstr := label
		if s.Platform == Landsat {
			bandstr = strings.NewReplacer("L", "_VCID_1", "H", "_VCID_2").Replace(label)
		}
		return fmt.Sprintf("FILE_NAME_BAND_%s", bandstr)
	}
	bandstr := strings.NewReplacer("L", "1", "H", "2").Replace(label)
	return fmt.Sprintf("BAND%s_FILE_NAME", bandstr)
}

// RadianceScaling returns the radiance gain and bias recorded for a band in
// the RADIANCE_SCALING metadata group (EO-1 ALI scenes)
func (s *Scene) RadianceScaling(label string) (gain float64, bias float64, err error) {
	scaling, ok := s.Meta.Group("RADIANCE_SCALING")
	if !ok {
		return 0, 0, fmt.Errorf("scene %s has no RADIANCE_SCALING metadata group", s.Dirname)
	}
	if gain, err = scaling.Float(fmt.Sprintf("BAND%s_SCALING_FACTOR", label)); err != nil {
		return 0, 0, err
	}
	if bias, err = scaling.Float(fmt.Sprintf("BAND%s_OFFSET", label)); err != nil {
		return 0, 0, err
	}
	return gain, bias, nil
}

func contains(list []string, item string) bool {
	for _, entry := range list {
		if entry == item {
			return true
		}
	}
	return false
}
