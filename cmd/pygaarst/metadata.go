package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/chryss/pygaarst/mtl"
	"github.com/chryss/pygaarst/util"
)

// metadataAction parses the MTL metadata named by the first argument and
// prints the metadata tree as JSON, preserving the file's key order
func metadataAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("Usage: pygaarst metadata <file, directory or raw ODL text>", 1)
	}
	return dumpMetadata(os.Stdout, c.Args().First())
}

func dumpMetadata(w io.Writer, loc string) error {
	logContext := &(util.BasicLogContext{})

	opts := []mtl.Option{mtl.WithDiagnostics(logContext)}
	if pattern := util.GetMetaPattern(); pattern != "" {
		opts = append(opts, mtl.WithMetaPattern(pattern))
	}

	meta, err := mtl.Parse(loc, opts...)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Could not parse metadata: %v", err), 1)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(meta)
}
