package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chryss/pygaarst/mtl"
)

const testSceneMTL = `GROUP = L1_METADATA_FILE
  GROUP = METADATA_FILE_INFO
    ORIGIN = "Image courtesy of the U.S. Geological Survey"
    LANDSAT_SCENE_ID = "LC80690142013153LGN00"
    PROCESSING_SOFTWARE_VERSION = "LPGS_2.2.2"
  END_GROUP = METADATA_FILE_INFO
  GROUP = PRODUCT_METADATA
    DATA_TYPE = "L1T"
    SPACECRAFT_ID = "LANDSAT_8"
    SENSOR_ID = "OLI_TIRS"
    LANDSAT_SCENE_ID = "LC80690142013153LGN00"
    DATE_ACQUIRED = 2013-06-02
    SCENE_CENTER_TIME = 21:12:52.7214030Z
    CORNER_UL_LAT_PRODUCT = 65.52919
    CORNER_UL_LON_PRODUCT = -151.27685
    CORNER_UR_LAT_PRODUCT = 65.50285
    CORNER_UR_LON_PRODUCT = -146.29008
    CORNER_LL_LAT_PRODUCT = 63.42392
    CORNER_LL_LON_PRODUCT = -151.11301
    CORNER_LR_LAT_PRODUCT = 63.39981
    CORNER_LR_LON_PRODUCT = -146.57907
  END_GROUP = PRODUCT_METADATA
  GROUP = IMAGE_ATTRIBUTES
    CLOUD_COVER = 9.27
    SUN_AZIMUTH = -166.48062598
  END_GROUP = IMAGE_ATTRIBUTES
END_GROUP = L1_METADATA_FILE
END
`

func writeTestScene(t *testing.T, root string, name string) string {
	sceneDir := filepath.Join(root, name)
	assert.Nil(t, os.Mkdir(sceneDir, 0755))
	assert.Nil(t, os.WriteFile(filepath.Join(sceneDir, name+"_MTL.txt"), []byte(testSceneMTL), 0644))
	return sceneDir
}

func TestSceneFromDir(t *testing.T) {
	root := t.TempDir()
	sceneDir := writeTestScene(t, root, "LC80690142013153LGN00")

	scene, err := SceneFromDir(sceneDir, "")
	assert.Nil(t, err, "%v", err)

	assert.Equal(t, "LC80690142013153LGN00", scene.ProductID)
	assert.Equal(t, "LANDSAT_8", scene.Spacecraft)
	assert.Equal(t, "OLI_TIRS", scene.Sensor)
	assert.Equal(t, sceneDir, scene.SceneDir)

	// the 9.27% CLOUD_COVER from the metadata is indexed as a fraction, the
	// unit the discover endpoint compares against
	assert.InDelta(t, 0.0927, scene.CloudCover, 1e-9)
	assert.True(t, scene.CloudCover <= 1.0)
	assert.Equal(t,
		time.Date(2013, time.June, 2, 21, 12, 52, 721403000, time.UTC),
		scene.AcquisitionDate)

	assert.NotNil(t, scene.Bounds)
	ring := scene.Bounds.Coordinates[0]
	assert.Len(t, ring, 5, "Corner polygon should be a closed ring")
	assert.Equal(t, []float64{-151.27685, 65.52919}, ring[0])
	assert.Equal(t, ring[0], ring[4], "Corner polygon should close on its first point")
}

func TestSceneFromDirWithoutMetadata(t *testing.T) {
	root := t.TempDir()
	emptyDir := filepath.Join(root, "not_a_scene")
	assert.Nil(t, os.Mkdir(emptyDir, 0755))

	_, err := SceneFromDir(emptyDir, "")
	assert.NotNil(t, err, "Directory without metadata did not cause an error")
	assert.IsType(t, &mtl.NotFoundError{}, err)
}

func TestSceneFromDirCustomPattern(t *testing.T) {
	root := t.TempDir()
	sceneDir := filepath.Join(root, "scene01")
	assert.Nil(t, os.Mkdir(sceneDir, 0755))
	assert.Nil(t, os.WriteFile(filepath.Join(sceneDir, "meta.odl"), []byte(testSceneMTL), 0644))

	_, err := SceneFromDir(sceneDir, "")
	assert.NotNil(t, err)

	scene, err := SceneFromDir(sceneDir, "*.odl")
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, "LC80690142013153LGN00", scene.ProductID)
}

func TestAborted(t *testing.T) {
	messageChan := make(chan string, 1)
	assert.False(t, aborted(messageChan))

	messageChan <- AbortIngestJobMessage
	assert.True(t, aborted(messageChan))

	messageChan <- BeginIngestJobMessage
	assert.False(t, aborted(messageChan), "A begin message should not abort the walk")
}
