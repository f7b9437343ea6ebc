package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/chryss/pygaarst/localindex/db"
	"github.com/chryss/pygaarst/util"
)

// ingestAction starts the archive indexing worker process and an http server
// for controlling it
func ingestAction(*cli.Context) {
	logContext := &(util.BasicLogContext{})
	portStr := getPortStr()

	archiveRoot := util.GetArchiveRoot()
	if archiveRoot == "" {
		util.LogAlert(logContext, "No archive root configured, nothing to ingest.")
		return
	}

	importer := db.NewImporter(archiveRoot, util.GetMetaPattern(), getDbConnectionFunc)

	//Create the channel that sends the start/stop messages to the Importer.
	messageChan := make(chan string, 5) //small buffer.

	//Start the sleep/ingest loop.
	go importer.ImportWhile(messageChan, util.GetIngestFrequency())

	//Set up an http router to control and observe the loop
	router := mux.NewRouter()
	router.HandleFunc("/ingest/", func(resp http.ResponseWriter, req *http.Request) {
		handleImportStatus(importer, resp, req)
	})
	router.HandleFunc("/ingest/start", func(resp http.ResponseWriter, req *http.Request) {
		handleForceStartIngest(importer, messageChan, resp, req)
	})
	router.HandleFunc("/ingest/cancel", func(resp http.ResponseWriter, req *http.Request) {
		handleCancel(importer, messageChan, resp, req)
	})

	launchServerFunc(portStr, router)
}

func handleImportStatus(importer *db.Importer, resp http.ResponseWriter, req *http.Request) {
	fmt.Fprint(resp, importer.GetStatus())
}

func handleForceStartIngest(importer *db.Importer, messageChan chan<- string, resp http.ResponseWriter, req *http.Request) {
	messageChan <- db.BeginIngestJobMessage
	fmt.Fprint(resp, "Requested ingest job start.")
}

func handleCancel(importer *db.Importer, messageChan chan<- string, resp http.ResponseWriter, req *http.Request) {
	messageChan <- db.AbortIngestJobMessage
	fmt.Fprint(resp, "Requested ingest job cancellation.")
}
