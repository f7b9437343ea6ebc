package mtl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chryss/pygaarst/util"
)

// The parser is a state machine driven by the kind of each incoming line
type parseState int

const (
	stBegin           parseState = 0
	stInGroup         parseState = 1
	stAfterAssignment parseState = 2
	stAfterGroupEnd   parseState = 3
	stEnd             parseState = 4
	stInObject        parseState = 5
	stAfterObjectEnd  parseState = 6
)

var stateNames = map[parseState]string{
	stBegin:           "begin",
	stInGroup:         "enter metadata group",
	stAfterAssignment: "add metadata item",
	stAfterGroupEnd:   "leave metadata group",
	stEnd:             "end",
	stInObject:        "enter object",
	stAfterObjectEnd:  "leave object",
}

var transitions = map[parseState]map[lineKind]parseState{
	stBegin: {
		lineGroupStart: stInGroup,
		lineFinal:      stEnd,
	},
	stInGroup: {
		lineGroupStart:  stInGroup,
		lineGroupEnd:    stAfterGroupEnd,
		lineObjectStart: stInObject,
		lineAssignment:  stAfterAssignment,
	},
	stAfterAssignment: {
		lineGroupStart:  stInGroup,
		lineGroupEnd:    stAfterGroupEnd,
		lineObjectStart: stInObject,
		lineObjectEnd:   stAfterObjectEnd,
		lineAssignment:  stAfterAssignment,
	},
	stAfterGroupEnd: {
		lineGroupStart:  stInGroup,
		lineGroupEnd:    stAfterGroupEnd,
		lineFinal:       stEnd,
		lineObjectStart: stInObject,
		lineObjectEnd:   stAfterObjectEnd,
		lineAssignment:  stAfterAssignment,
	},
	stInObject: {
		lineGroupStart:  stInGroup,
		lineGroupEnd:    stAfterGroupEnd,
		lineObjectStart: stInObject,
		lineObjectEnd:   stAfterObjectEnd,
		lineAssignment:  stAfterAssignment,
	},
	stAfterObjectEnd: {
		lineGroupStart:  stInGroup,
		lineGroupEnd:    stAfterGroupEnd,
		lineObjectStart: stInObject,
		lineObjectEnd:   stAfterObjectEnd,
		lineAssignment:  stAfterAssignment,
	},
}

// Option configures a single parse call
type Option func(*config)

type config struct {
	pattern      string
	ignoreGroups map[string]bool
	diag         util.LogContext
}

// WithMetaPattern overrides the glob pattern used to locate a metadata file
// within a scene directory
func WithMetaPattern(pattern string) Option {
	return func(cfg *config) {
		cfg.pattern = pattern
	}
}

// WithIgnoreGroups overrides the set of group names whose nesting is
// flattened into the enclosing group
func WithIgnoreGroups(names ...string) Option {
	return func(cfg *config) {
		cfg.ignoreGroups = map[string]bool{}
		for _, name := range names {
			cfg.ignoreGroups[name] = true
		}
	}
}

// WithDiagnostics sets the sink for soft diagnostics (untypeable values,
// trailing content after the END token)
func WithDiagnostics(ctx util.LogContext) Option {
	return func(cfg *config) {
		cfg.diag = ctx
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		pattern:      DefaultMetaPattern,
		ignoreGroups: map[string]bool{},
		diag:         &util.BasicLogContext{},
	}
	for _, name := range defaultIgnoreGroups {
		cfg.ignoreGroups[name] = true
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

type pathEntryKind int

const (
	entryGroup pathEntryKind = iota
	entryObject
)

type pathEntry struct {
	name string
	kind pathEntryKind
}

// parseContext holds the transient state for a single parse call
type parseContext struct {
	status    parseState
	groupPath []pathEntry
	dictPath  []*Params
	cfg       *config
}

func newParseContext(cfg *config) *parseContext {
	root := NewParams()
	return &parseContext{
		status:   stBegin,
		dictPath: []*Params{root},
		cfg:      cfg,
	}
}

func (ctx *parseContext) root() *Params {
	return ctx.dictPath[0]
}

func (ctx *parseContext) currentDict() *Params {
	return ctx.dictPath[len(ctx.dictPath)-1]
}

func (ctx *parseContext) errorf(line string, format string, args ...interface{}) error {
	return &ParseError{
		Line:  line,
		State: stateNames[ctx.status],
		Msg:   fmt.Sprintf(format, args...),
	}
}

// feed advances the state machine by one sanitized, non-empty line
func (ctx *parseContext) feed(line string) error {
	kind := classifyLine(line)
	newStatus, ok := transitions[ctx.status][kind]
	if !ok {
		return ctx.errorf(line, "cannot parse line")
	}
	ctx.status = newStatus

	switch newStatus {
	case stInGroup:
		ctx.enterGroup(blockName(line, grpStart))
	case stAfterAssignment:
		return ctx.addItem(line)
	case stAfterGroupEnd:
		return ctx.leaveGroup(line)
	case stInObject:
		ctx.groupPath = append(ctx.groupPath, pathEntry{blockName(line, objStart), entryObject})
	case stAfterObjectEnd:
		return ctx.leaveObject(line)
	case stEnd:
		if len(ctx.groupPath) > 0 {
			return ctx.errorf(line, "reached end before end of group '%s'", ctx.groupPath[len(ctx.groupPath)-1].name)
		}
	}
	return nil
}

func (ctx *parseContext) enterGroup(name string) {
	ctx.groupPath = append(ctx.groupPath, pathEntry{name, entryGroup})
	if !ctx.cfg.ignoreGroups[name] {
		group := NewParams()
		ctx.currentDict().Set(name, group)
		ctx.dictPath = append(ctx.dictPath, group)
	}
}

func (ctx *parseContext) addItem(line string) error {
	if len(ctx.groupPath) == 0 {
		return ctx.errorf(line, "metadata item outside of any group")
	}
	key, rawval := metadataItem(line)
	parent := ctx.groupPath[len(ctx.groupPath)-1]
	current := ctx.currentDict()

	if parent.kind == entryGroup {
		current.Set(key, inferValue(rawval, ctx.cfg.diag))
		return nil
	}

	// Assignments inside an OBJECT container fold into the enclosing group.
	// Only the VALUE assignment carries data; NUM_VAL, CLASS and the like are
	// container bookkeeping and are dropped.
	if key != objValueKey {
		return nil
	}
	switch parent.name {
	case objAdditionalAttributeName:
		// declares a new attribute key; the value arrives later via a
		// sibling PARAMETERVALUE object
		current.Set(valueAsKey(inferValue(rawval, ctx.cfg.diag)), nil)
	case objParameterValue:
		// supplies the value for the most recently declared key; re-insertion
		// moves the key to the end of the group
		if attr, _, ok := current.PopLast(); ok {
			current.Set(attr, inferValue(rawval, ctx.cfg.diag))
		}
	default:
		current.Set(parent.name, inferValue(rawval, ctx.cfg.diag))
	}
	return nil
}

func (ctx *parseContext) leaveGroup(line string) error {
	name := blockName(line, grpEnd)
	if len(ctx.groupPath) == 0 {
		return ctx.errorf(line, "reached group end with no group open")
	}
	top := ctx.groupPath[len(ctx.groupPath)-1]
	if top.kind != entryGroup || top.name != name {
		return ctx.errorf(line, "reached group end while reading '%s'", top.name)
	}
	ctx.groupPath = ctx.groupPath[:len(ctx.groupPath)-1]
	if !ctx.cfg.ignoreGroups[name] {
		ctx.dictPath = ctx.dictPath[:len(ctx.dictPath)-1]
	}
	return nil
}

func (ctx *parseContext) leaveObject(line string) error {
	name := blockName(line, objEnd)
	if len(ctx.groupPath) == 0 {
		return ctx.errorf(line, "reached object end with no object open")
	}
	top := ctx.groupPath[len(ctx.groupPath)-1]
	if top.kind != entryObject || top.name != name {
		return ctx.errorf(line, "reached object end while reading '%s'", top.name)
	}
	ctx.groupPath = ctx.groupPath[:len(ctx.groupPath)-1]
	return nil
}

func valueAsKey(val interface{}) string {
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

// Parse parses MTL/ODL metadata and returns the root of the metadata tree.
//
// The location may be a scene directory (the metadata file is located by glob
// pattern; the first match is used and a warning logged if several match), the
// path of a metadata file, or raw ODL text. A directory without a matching
// file yields a *NotFoundError; malformed metadata yields a *ParseError.
func Parse(loc string, opts ...Option) (*Params, error) {
	cfg := newConfig(opts)

	info, err := os.Stat(loc)
	switch {
	case err == nil && info.IsDir():
		matches, err := filepath.Glob(filepath.Join(loc, cfg.pattern))
		if err != nil || len(matches) == 0 {
			return nil, &NotFoundError{Location: loc, Pattern: cfg.pattern}
		}
		if len(matches) > 1 {
			util.LogAlert(cfg.diag, fmt.Sprintf(
				"More than one file in directory %s matches the metadata file pattern. Using %s.", loc, matches[0]))
		}
		return parseFile(matches[0], cfg)
	case err == nil:
		return parseFile(loc, cfg)
	case strings.Contains(loc, assignChar):
		// not a path; treat the argument itself as ODL content
		return parseStream(strings.NewReader(loc), cfg)
	}
	return nil, &NotFoundError{Location: loc}
}

// ParseReader parses MTL/ODL metadata from a reader
func ParseReader(r io.Reader, opts ...Option) (*Params, error) {
	return parseStream(r, newConfig(opts))
}

func parseFile(path string, cfg *config) (*Params, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseStream(file, cfg)
}

func parseStream(r io.Reader, cfg *config) (*Params, error) {
	ctx := newParseContext(cfg)
	trailing := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := sanitizeLine(scanner.Text())
		if line == "" {
			continue
		}
		if ctx.status == stEnd {
			if !trailing {
				util.LogAlert(cfg.diag,
					"Metadata appears to have extra lines after the end of the metadata. "+
						"This is probably, but not necessarily, harmless.")
				trailing = true
			}
			continue
		}
		if err := ctx.feed(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ctx.groupPath) > 0 {
		return nil, ctx.errorf("", "input ended before end of group '%s'", ctx.groupPath[len(ctx.groupPath)-1].name)
	}
	return ctx.root(), nil
}
