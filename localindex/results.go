package localindex

import (
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/chryss/pygaarst/localindex/db"
)

// sceneFeature converts an indexed scene into a GeoJSON feature with
// the metadata fields the discovery API exposes
func sceneFeature(scene db.ArchiveScene) *geojson.Feature {
	feature := geojson.NewFeature(scene.Bounds, scene.ProductID, map[string]interface{}{
		"spacecraft":   scene.Spacecraft,
		"sensorName":   scene.Sensor,
		"cloudCover":   scene.CloudCover,
		"acquiredDate": scene.AcquisitionDate.Format(time.RFC3339),
		"sceneDir":     scene.SceneDir,
	})
	feature.Bbox = feature.ForceBbox()
	return feature
}

// sceneFeatureCollection bundles search results for the discovery endpoint
func sceneFeatureCollection(scenes []db.ArchiveScene) *geojson.FeatureCollection {
	features := make([]*geojson.Feature, len(scenes))
	for i, scene := range scenes {
		features[i] = sceneFeature(scene)
	}
	return geojson.NewFeatureCollection(features)
}
