package usgsl1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chryss/pygaarst/raster"
)

const landsat8MTL = `GROUP = L1_METADATA_FILE
  GROUP = METADATA_FILE_INFO
    ORIGIN = "Image courtesy of the U.S. Geological Survey"
    PROCESSING_SOFTWARE_VERSION = "LPGS_2.2.2"
  END_GROUP = METADATA_FILE_INFO
  GROUP = PRODUCT_METADATA
    DATA_TYPE = "L1T"
    SPACECRAFT_ID = "LANDSAT_8"
    SENSOR_ID = "OLI_TIRS"
    FILE_NAME_BAND_4 = "LC80690142013153LGN00_B4.TIF"
    FILE_NAME_BAND_10 = "LC80690142013153LGN00_B10.TIF"
  END_GROUP = PRODUCT_METADATA
END_GROUP = L1_METADATA_FILE
END
`

const landsat7OldFormatMTL = `GROUP = L1_METADATA_FILE
  GROUP = METADATA_FILE_INFO
    ORIGIN = "Image courtesy of the U.S. Geological Survey"
  END_GROUP = METADATA_FILE_INFO
  GROUP = PRODUCT_METADATA
    SPACECRAFT_ID = "Landsat7"
    SENSOR_ID = "ETM+"
    PROCESSING_SOFTWARE = "LPGS_11.6.0"
    BAND61_FILE_NAME = "L71069014_01420130602_B061.TIF"
  END_GROUP = PRODUCT_METADATA
END_GROUP = L1_METADATA_FILE
END
`

const aliMTL = `GROUP = L1_METADATA_FILE
  GROUP = METADATA_FILE_INFO
    ORIGIN = "Image courtesy of the U.S. Geological Survey"
    PROCESSING_SOFTWARE_VERSION = "EO1-0.10"
  END_GROUP = METADATA_FILE_INFO
  GROUP = PRODUCT_METADATA
    SPACECRAFT_ID = "EO1"
    SENSOR_ID = "ALI"
    FILE_NAME_BAND_3 = "EO1A0690142013153110KF_B03_L1T.TIF"
  END_GROUP = PRODUCT_METADATA
  GROUP = RADIANCE_SCALING
    BAND3_SCALING_FACTOR = 0.0430
    BAND3_OFFSET = -1.9
  END_GROUP = RADIANCE_SCALING
END_GROUP = L1_METADATA_FILE
END
`

type fakeRaster struct {
	path string
}

func (r fakeRaster) Width() int                     { return 7611 }
func (r fakeRaster) Height() int                    { return 7761 }
func (r fakeRaster) BandCount() int                 { return 1 }
func (r fakeRaster) GeoTransform() [6]float64       { return [6]float64{399000, 30, 0, 7248300, 0, -30} }
func (r fakeRaster) ProjectionWKT() string          { return `PROJCS["WGS 84 / UTM zone 6N"]` }
func (r fakeRaster) ReadArray() ([][]float64, error) { return [][]float64{{0}}, nil }

func fakeOpener(opened *[]string) raster.Opener {
	return func(path string) (raster.Handle, error) {
		*opened = append(*opened, path)
		return fakeRaster{path: path}, nil
	}
}

func writeSceneDir(t *testing.T, mtlContent string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "scene_MTL.txt"), []byte(mtlContent), 0644)
	assert.Nil(t, err)
	return dir
}

func TestOpenLandsatScene(t *testing.T) {
	dir := writeSceneDir(t, landsat8MTL)

	scene, err := OpenLandsat(testLogContext{}, dir, nil)
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, "L8", scene.Spacecraft)
	assert.Equal(t, "OLI_TIRS", scene.Sensor)

	_, ok := scene.Meta.Group("PRODUCT_METADATA")
	assert.True(t, ok)
}

func TestSceneBandResolution(t *testing.T) {
	dir := writeSceneDir(t, landsat8MTL)
	var opened []string

	scene, err := OpenLandsat(testLogContext{}, dir, fakeOpener(&opened))
	assert.Nil(t, err, "%v", err)

	band, err := scene.Band("4")
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, "4", band.Label)
	assert.Equal(t, filepath.Join(dir, "LC80690142013153LGN00_B4.TIF"), band.Path)

	handle, err := band.Raster()
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, 7611, handle.Width())
	assert.Equal(t, []string{band.Path}, opened)

	// second open returns the cached handle
	_, err = band.Raster()
	assert.Nil(t, err)
	assert.Len(t, opened, 1)
}

func TestSceneBandCaching(t *testing.T) {
	dir := writeSceneDir(t, landsat8MTL)

	scene, err := OpenLandsat(testLogContext{}, dir, nil)
	assert.Nil(t, err, "%v", err)

	first, err := scene.Band("10")
	assert.Nil(t, err, "%v", err)
	second, err := scene.Band("10")
	assert.Nil(t, err, "%v", err)
	assert.Same(t, first, second, "Band objects should be cached per label")
}

func TestSceneBandInfix(t *testing.T) {
	dir := writeSceneDir(t, landsat8MTL)

	scene, err := OpenLandsat(testLogContext{}, dir, nil)
	assert.Nil(t, err, "%v", err)
	scene.Infix = "_r500"

	band, err := scene.Band("4")
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, filepath.Join(dir, "LC80690142013153LGN00_B4_r500.TIF"), band.Path)
}

func TestSceneInvalidBandLabel(t *testing.T) {
	dir := writeSceneDir(t, landsat8MTL)

	scene, err := OpenLandsat(testLogContext{}, dir, nil)
	assert.Nil(t, err, "%v", err)

	_, err = scene.Band("12")
	assert.NotNil(t, err, "Invalid band label did not cause an error")
	assert.Contains(t, err.Error(), "does not have a band")
}

func TestSceneOldMetadataFormat(t *testing.T) {
	dir := writeSceneDir(t, landsat7OldFormatMTL)

	scene, err := OpenLandsat(testLogContext{}, dir, nil)
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, "L7", scene.Spacecraft)

	band, err := scene.Band("6L")
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, filepath.Join(dir, "L71069014_01420130602_B061.TIF"), band.Path)
}

func TestOpenALIScene(t *testing.T) {
	dir := writeSceneDir(t, aliMTL)

	scene, err := OpenALI(testLogContext{}, dir, nil)
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, "EO1", scene.Spacecraft)

	band, err := scene.Band("3")
	assert.Nil(t, err, "%v", err)

	gain, bias, err := band.RadianceScaling()
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, 0.0430, gain)
	assert.Equal(t, -1.9, bias)

	_, err = scene.Band("11")
	assert.NotNil(t, err, "ALI band 11 did not cause an error")
}

func TestOpenSceneMissingMetadata(t *testing.T) {
	_, err := OpenLandsat(testLogContext{}, t.TempDir(), nil)
	assert.NotNil(t, err, "Directory without metadata did not cause an error")
}

func TestNormalizeSpacecraftID(t *testing.T) {
	assert.Equal(t, "L8", normalizeSpacecraftID("LANDSAT_8"))
	assert.Equal(t, "L5", normalizeSpacecraftID("Landsat5"))
	assert.Equal(t, "L7", normalizeSpacecraftID("Landsat7"))
	assert.Equal(t, "EO1", normalizeSpacecraftID("EO1"))
}

type testLogContext struct{}

func (ctx testLogContext) AppName() string    { return "pygaarst TESTING" }
func (ctx testLogContext) SessionID() string  { return "test-session" }
func (ctx testLogContext) LogRootDir() string { return "/tmp" }
