package localindex

import (
	"database/sql"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/chryss/pygaarst/localindex/db"
)

func discoverScenes(tx *sql.Tx, bbox geojson.BoundingBox,
	maxCloudCover float64, minAcquiredDate time.Time, maxAcquiredDate time.Time) (*geojson.FeatureCollection, error) {
	scenes, err := db.SearchScenes(tx, bbox, maxCloudCover, minAcquiredDate, maxAcquiredDate)
	if err != nil {
		return nil, err
	}
	return sceneFeatureCollection(scenes), nil
}

func getMetadata(tx *sql.Tx, sceneID string) (*geojson.Feature, error) {
	scene, err := db.GetSceneByID(tx, sceneID)
	if err != nil {
		return nil, err
	}
	return sceneFeature(*scene), nil
}
