// Package mtl parses the MTL metadata files that accompany USGS Landsat and
// EO-1 (Hyperion and ALI) Level 1 scene archives, as well as the nested
// attribute-container ODL dialect used for NASA HDF-EOS (MODIS) core and
// archive metadata.
//
// The metadata file looks like this:
//
//	GROUP = L1_METADATA_FILE
//	  GROUP = METADATA_FILE_INFO
//	    ORIGIN = "Image courtesy of the U.S. Geological Survey"
//	    REQUEST_ID = "0501306252996_00005"
//	    ...
//	    STATION_ID = "LGN"
//	    PROCESSING_SOFTWARE_VERSION = "LPGS_2.2.2"
//	  END_GROUP = METADATA_FILE_INFO
//	  GROUP = PRODUCT_METADATA
//	    DATA_TYPE = "L1T"
//	    ...
//	  END_GROUP = PRODUCT_METADATA
//	END_GROUP = L1_METADATA_FILE
//	END
//
// The extended dialect additionally nests OBJECT = ... / END_OBJECT = ...
// containers whose VALUE assignments fold into the enclosing group.
package mtl

import (
	"regexp"
	"strings"
)

// DefaultMetaPattern matches Landsat metadata files, which end in _MTL.txt or _MTL.TXT
const DefaultMetaPattern = "*_MTL*"

// Elements from the file format used for parsing
const (
	grpStart   = "GROUP="
	grpEnd     = "END_GROUP="
	objStart   = "OBJECT="
	objEnd     = "END_OBJECT="
	assignChar = "="
	finalToken = "END"
)

// Groups whose nesting is a no-op wrapper and should not create an extra
// level in the output tree
var defaultIgnoreGroups = []string{
	"INFORMATIONCONTENT",
}

// Object names with folding rules of their own
const (
	objAdditionalAttributeName = "ADDITIONALATTRIBUTENAME"
	objParameterValue          = "PARAMETERVALUE"
	objValueKey                = "VALUE"
)

var separatorPattern = regexp.MustCompile(`\s+=\s+`)

// sanitizeLine canonicalizes a raw metadata line: the padded assignment
// separator collapses to a bare "=" and surrounding whitespace is stripped.
// Blank lines come back empty; callers skip those.
func sanitizeLine(line string) string {
	return strings.TrimSpace(separatorPattern.ReplaceAllString(line, assignChar))
}

// lineKind classifies a sanitized, non-empty metadata line
type lineKind int

const (
	lineUnknown lineKind = iota
	lineGroupStart
	lineGroupEnd
	lineObjectStart
	lineObjectEnd
	lineAssignment
	lineFinal
)

// classifyLine determines the kind of a sanitized line. The start/end prefix
// tests run before the generic assignment test, as group and object start and
// end lines are also assignments.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, grpStart):
		return lineGroupStart
	case strings.HasPrefix(line, grpEnd):
		return lineGroupEnd
	case strings.HasPrefix(line, objStart):
		return lineObjectStart
	case strings.HasPrefix(line, objEnd):
		return lineObjectEnd
	case line == finalToken:
		return lineFinal
	case strings.Contains(line, assignChar):
		return lineAssignment
	}
	return lineUnknown
}

// blockName extracts the group or object name from a start or end line
func blockName(line string, marker string) string {
	return strings.TrimPrefix(line, marker)
}

// metadataItem extracts the key/value pair from an assignment line
func metadataItem(line string) (string, string) {
	parts := strings.SplitN(line, assignChar, 2)
	return parts[0], parts[1]
}
