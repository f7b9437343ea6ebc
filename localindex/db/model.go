package db

import (
	"database/sql"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/chryss/pygaarst/util"
)

// ConnectionProvider is a function that can provide a database connection.
type ConnectionProvider func(util.LogContext) (*sql.DB, error)

// ArchiveScene is one indexed scene of the local imagery archive
type ArchiveScene struct {
	ProductID       string
	Spacecraft      string
	Sensor          string
	AcquisitionDate time.Time
	CloudCover      float64 // fraction, 0.0-1.0
	SceneDir        string
	Bounds          *geojson.Polygon
}
