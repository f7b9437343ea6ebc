package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/chryss/pygaarst/mtl"
	"github.com/chryss/pygaarst/util"
)

// Messages understood by the importer job loop
const (
	BeginIngestJobMessage = "begin"
	AbortIngestJobMessage = "abort"
)

// Importer manages the state for an archive indexing job: it walks an archive
// root directory, parses each scene's MTL metadata and upserts the scenes
// into the index.
type Importer struct {
	archiveRoot    string
	metaPattern    string
	dbConnProvider ConnectionProvider
	statusChan     chan chan string
}

// NewImporter initializes a new importer. An empty metaPattern uses the
// parser's default metadata file pattern.
func NewImporter(archiveRoot string, metaPattern string, dbConnProvider ConnectionProvider) *Importer {
	return &Importer{
		archiveRoot:    archiveRoot,
		metaPattern:    metaPattern,
		dbConnProvider: dbConnProvider,
		statusChan:     make(chan chan string, 10)}
}

// ImportWhile performs the Import() task on a schedule and waits for a channel.
// Note: this is blocking.
// The function will exit when messageChan is closed and any in-progress jobs complete.
// To close quickly, send AbortIngestJobMessage on messageChan before closing it.
func (imp *Importer) ImportWhile(messageChan <-chan string, maxTimeBetweenJobs time.Duration) {
	log.Println("Job loop started with frequency", maxTimeBetweenJobs)

	previousStatus := "\tNone"

	scheduleTimer := time.NewTimer(maxTimeBetweenJobs)
	nextScheduledStartTime := time.Now().Add(maxTimeBetweenJobs)

	var startJob bool
	for {
		startJob = false

		//Wait for a start message.
		//Status is reported cooperatively, so deal with any requests while we wait.
		select {
		case <-scheduleTimer.C:
			log.Println("Maximum time between jobs elapsed.")
			startJob = true
		case msg, ok := <-messageChan:
			if !ok {
				return //The message channel has been closed. Exit.
			}
			switch msg {
			case BeginIngestJobMessage:
				log.Println("User requested job start.")
				startJob = true
			default:
				//ignore this message. We only want ones for "begin".
			}
		case respChan := <-imp.statusChan:
			//The user has sent a request for the current status.
			select {
			//Try to send a response on the provided channel.
			case respChan <- fmt.Sprintf("%v\nStatus: Sleeping until %v\nPrevious job:\n%v",
				time.Now().Format("Mon Jan _2 15:04:05 2006"),
				nextScheduledStartTime.Format("Mon Jan _2 15:04:05 2006"),
				previousStatus): //good
			default:
				//Could not send immediately. We'll ignore it.
			}
		}

		if startJob {
			log.Println("Starting job.")
			previousStatus = imp.Import(messageChan)

			//Reset the timer. Rather than keep track of whether we've received
			//on the timer channel (maybe that's how we got here), we'll just
			//drain it in a general way.
			scheduleTimer.Stop()
		TimerDrainLoop:
			for {
				select {
				case <-scheduleTimer.C: //good, discard
				default:
					//Channel is empty. We're done.
					break TimerDrainLoop
				}
			}

			scheduleTimer.Reset(maxTimeBetweenJobs)
			nextScheduledStartTime = time.Now().Add(maxTimeBetweenJobs)
		}
	}
}

// GetStatus is a thread safe way to get information about the import operation.
func (imp *Importer) GetStatus() string {
	responseChan := make(chan string, 1) //Must have a buffer. The job loop won't wait if it can't send.
	imp.statusChan <- responseChan
	status := <-responseChan
	return status
}

// Import walks the archive once and updates the index. It returns a summary
// suitable for status reporting.
func (imp *Importer) Import(messageChan <-chan string) (result string) {
	logCtx := &util.BasicLogContext{}

	//Database connection is opened right before the ingest, and closed
	//immediately after.
	database, err := imp.dbConnProvider(logCtx)
	if err != nil {
		util.LogSimpleErr(logCtx, "Could not open database connection.", err)
		return "Failed: no database connection"
	}
	defer database.Close()

	indexed, failed, err := imp.Ingest(database, messageChan)
	if err != nil {
		util.LogSimpleErr(logCtx, "Archive ingest failed.", err)
		return fmt.Sprintf("Failed after %d scenes: %v", indexed, err)
	}
	return fmt.Sprintf("Indexed %d scenes, skipped %d directories", indexed, failed)
}

// Ingest scans the archive root for scene directories and upserts each one
// that carries parseable MTL metadata. Directories without metadata are
// counted and skipped. An abort message on messageChan stops the walk.
func (imp *Importer) Ingest(database *sql.DB, messageChan <-chan string) (indexed int, skipped int, err error) {
	logCtx := &util.BasicLogContext{}

	entries, err := os.ReadDir(imp.archiveRoot)
	if err != nil {
		return 0, 0, err
	}

	tx, err := database.Begin()
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if aborted(messageChan) {
			util.LogAlert(logCtx, "Archive ingest aborted.")
			break
		}
		if !entry.IsDir() {
			continue
		}
		sceneDir := filepath.Join(imp.archiveRoot, entry.Name())
		scene, sceneErr := SceneFromDir(sceneDir, imp.metaPattern)
		if sceneErr != nil {
			if _, notFound := sceneErr.(*mtl.NotFoundError); !notFound {
				util.LogSimpleErr(logCtx, fmt.Sprintf("Could not index scene directory %s.", sceneDir), sceneErr)
			}
			skipped++
			continue
		}
		if err = UpsertScene(tx, *scene); err != nil {
			tx.Rollback()
			return indexed, skipped, err
		}
		indexed++
	}

	return indexed, skipped, tx.Commit()
}

func aborted(messageChan <-chan string) bool {
	select {
	case msg := <-messageChan:
		return msg == AbortIngestJobMessage
	default:
		return false
	}
}

// SceneFromDir builds an index record for one scene directory from its MTL
// metadata. An empty metaPattern uses the parser default.
func SceneFromDir(sceneDir string, metaPattern string) (*ArchiveScene, error) {
	opts := []mtl.Option{}
	if metaPattern != "" {
		opts = append(opts, mtl.WithMetaPattern(metaPattern))
	}
	metadata, err := mtl.Parse(sceneDir, opts...)
	if err != nil {
		return nil, err
	}
	meta, ok := metadata.Group("L1_METADATA_FILE")
	if !ok {
		return nil, fmt.Errorf("metadata in %s has no L1_METADATA_FILE group", sceneDir)
	}
	product, ok := meta.Group("PRODUCT_METADATA")
	if !ok {
		return nil, fmt.Errorf("metadata in %s has no PRODUCT_METADATA group", sceneDir)
	}

	scene := ArchiveScene{SceneDir: sceneDir}
	if scene.ProductID, err = product.String("LANDSAT_SCENE_ID"); err != nil {
		scene.ProductID = filepath.Base(sceneDir)
	}
	if scene.Spacecraft, err = product.String("SPACECRAFT_ID"); err != nil {
		return nil, err
	}
	if scene.Sensor, err = product.String("SENSOR_ID"); err != nil {
		return nil, err
	}
	scene.AcquisitionDate, err = acquisitionTime(product)
	if err != nil {
		return nil, err
	}
	// MTL records cloud cover as a percentage; the index stores a fraction
	if imageAttrs, ok := meta.Group("IMAGE_ATTRIBUTES"); ok {
		scene.CloudCover, _ = imageAttrs.Float("CLOUD_COVER")
	} else {
		scene.CloudCover, _ = product.Float("CLOUD_COVER")
	}
	scene.CloudCover = scene.CloudCover / 100.0
	scene.Bounds, err = cornerBounds(product)
	if err != nil {
		return nil, err
	}

	return &scene, nil
}

// acquisitionTime combines the DATE_ACQUIRED and SCENE_CENTER_TIME metadata
// values into a single timestamp
func acquisitionTime(product *mtl.Params) (time.Time, error) {
	rawDate, ok := product.Get("DATE_ACQUIRED")
	if !ok {
		rawDate, ok = product.Get("ACQUISITION_DATE")
	}
	if !ok {
		return time.Time{}, fmt.Errorf("no acquisition date in product metadata")
	}
	date, ok := rawDate.(mtl.Date)
	if !ok {
		return time.Time{}, fmt.Errorf("acquisition date has unexpected type %T", rawDate)
	}

	center := mtl.TimeOfDay{}
	if rawTime, ok := product.Get("SCENE_CENTER_TIME"); ok {
		if tod, ok := rawTime.(mtl.TimeOfDay); ok {
			center = tod
		}
	}

	return time.Date(date.Year, date.Month, date.Day,
		center.Hour, center.Minute, center.Second, center.Nanosecond, time.UTC), nil
}

// cornerBounds assembles the product corner coordinates into a closed polygon
func cornerBounds(product *mtl.Params) (*geojson.Polygon, error) {
	corners := [][2]string{
		{"CORNER_UL_LON_PRODUCT", "CORNER_UL_LAT_PRODUCT"},
		{"CORNER_UR_LON_PRODUCT", "CORNER_UR_LAT_PRODUCT"},
		{"CORNER_LR_LON_PRODUCT", "CORNER_LR_LAT_PRODUCT"},
		{"CORNER_LL_LON_PRODUCT", "CORNER_LL_LAT_PRODUCT"},
	}
	ring := make([][]float64, 0, 5)
	for _, corner := range corners {
		lon, err := product.Float(corner[0])
		if err != nil {
			return nil, fmt.Errorf("missing corner coordinate: %v", err)
		}
		lat, err := product.Float(corner[1])
		if err != nil {
			return nil, fmt.Errorf("missing corner coordinate: %v", err)
		}
		ring = append(ring, []float64{lon, lat})
	}
	ring = append(ring, ring[0])

	return geojson.NewPolygon([][][]float64{ring}), nil
}
