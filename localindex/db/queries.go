package db

import (
	"database/sql"
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// GetSceneByID recovers a single indexed scene by its product ID
func GetSceneByID(tx *sql.Tx, productID string) (*ArchiveScene, error) {
	var boundsBytes []byte
	scene := ArchiveScene{}

	rows, err := tx.Query(`
		SELECT product_id, spacecraft, sensor, acquisition_date, cloud_cover, scene_dir, ST_AsGeoJSON(bounds)
		FROM public.scenes
		WHERE product_id=$1
		LIMIT 1`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	err = rows.Scan(&scene.ProductID, &scene.Spacecraft, &scene.Sensor,
		&scene.AcquisitionDate, &scene.CloudCover, &scene.SceneDir, &boundsBytes)
	if err != nil {
		return nil, err
	}

	scene.Bounds, err = geojson.PolygonFromBytes(boundsBytes)
	if err != nil {
		return nil, err
	}

	return &scene, nil
}

// SearchScenes finds indexed scenes intersecting a bounding box, filtered by
// maximum cloud cover fraction and an acquisition date range
func SearchScenes(tx *sql.Tx, bbox geojson.BoundingBox,
	maxCloudCover float64, minAcquiredDate time.Time, maxAcquiredDate time.Time) ([]ArchiveScene, error) {
	rows, err := tx.Query(`
		SELECT product_id, spacecraft, sensor, acquisition_date, cloud_cover, scene_dir, ST_AsGeoJSON(bounds)
		FROM public.scenes
		WHERE cloud_cover <= $1
		AND acquisition_date BETWEEN $2 AND $3
		AND ST_Intersects(bounds, ST_MakeEnvelope($4, $5, $6, $7, 4326))
		ORDER BY acquisition_date DESC`,
		maxCloudCover, minAcquiredDate, maxAcquiredDate,
		bbox[0], bbox[1], bbox[2], bbox[3],
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scenes := []ArchiveScene{}
	for rows.Next() {
		var boundsBytes []byte
		scene := ArchiveScene{}
		err = rows.Scan(&scene.ProductID, &scene.Spacecraft, &scene.Sensor,
			&scene.AcquisitionDate, &scene.CloudCover, &scene.SceneDir, &boundsBytes)
		if err != nil {
			return nil, err
		}
		scene.Bounds, err = geojson.PolygonFromBytes(boundsBytes)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}

	return scenes, rows.Err()
}

const upsertSceneStatement = `
INSERT INTO scenes as s (
	product_id,
	spacecraft,
	sensor,
	acquisition_date,
	cloud_cover,
	scene_dir,
	bounds)
VALUES
(
	$1, $2, $3, $4, $5, $6,
	ST_SetSRID(ST_GeomFromGeoJSON($7), 4326)
)
	ON CONFLICT (product_id) DO UPDATE
	SET spacecraft = $2,
		sensor = $3,
		acquisition_date = $4,
		cloud_cover = $5,
		scene_dir = $6,
		bounds = ST_SetSRID(ST_GeomFromGeoJSON($7), 4326)
`

// UpsertScene inserts a scene into the index, or refreshes it if the product
// ID is already present
func UpsertScene(tx *sql.Tx, scene ArchiveScene) error {
	_, err := tx.Exec(upsertSceneStatement,
		scene.ProductID, scene.Spacecraft, scene.Sensor,
		scene.AcquisitionDate, scene.CloudCover, scene.SceneDir,
		scene.Bounds.String(),
	)
	return err
}
