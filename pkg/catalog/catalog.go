package catalog

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
)

//go:embed definitions/*.cue
var definitionsFS embed.FS

const schemaFile = "definitions/schema.cue"

// Catalog is a read-only set of connector definitions with unique names.
type Catalog struct {
	connectors []ConnectorDefinition
	byName     map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in catalog. It is loaded once and never mutated.
// Default panics if the embedded definitions are invalid, which is a build
// defect rather than a runtime condition.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("catalog: embedded definitions are invalid: %v", defaultErr))
	}
	return defaultCatalog
}

// Load builds a catalog from the embedded definitions plus any extra CUE files.
// Extra files declare connectors in a top-level sources, sinks or connectors
// list and are checked against the same schema as the built-in entries.
func Load(extraFiles ...string) (*Catalog, error) {
	ctx := cuecontext.New()

	schemaSrc, err := definitionsFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	schema := ctx.CompileBytes(schemaSrc, cue.Filename(schemaFile))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	entries, err := definitionsFS.ReadDir("definitions")
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	// The embedded files define disjoint fields, so they unify into one value.
	builtin := schema
	for _, entry := range entries {
		name := path.Join("definitions", entry.Name())
		if name == schemaFile {
			continue
		}
		src, err := definitionsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		builtin = builtin.Unify(ctx.CompileBytes(src, cue.Filename(name)))
	}

	defs, err := decodeDefinitions(builtin)
	if err != nil {
		return nil, err
	}

	for _, file := range extraFiles {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", file, err)
		}
		val := schema.Unify(ctx.CompileBytes(src, cue.Filename(file)))
		extra, err := decodeDefinitions(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		defs = append(defs, extra...)
	}

	return New(defs)
}

func decodeDefinitions(val cue.Value) ([]ConnectorDefinition, error) {
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile definitions: %w", err)
	}
	if err := val.Validate(); err != nil {
		return nil, fmt.Errorf("definitions do not match schema: %w", err)
	}

	var defs []ConnectorDefinition
	for _, field := range []string{"sources", "sinks", "connectors"} {
		list := val.LookupPath(cue.ParsePath(field))
		if !list.Exists() {
			continue
		}
		var decoded []ConnectorDefinition
		if err := list.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", field, err)
		}
		defs = append(defs, decoded...)
	}
	return defs, nil
}

// New builds a catalog from the given definitions. Names must be unique and
// every definition must pass struct validation.
func New(defs []ConnectorDefinition) (*Catalog, error) {
	v := validator.New()
	c := &Catalog{
		connectors: make([]ConnectorDefinition, 0, len(defs)),
		byName:     make(map[string]int, len(defs)),
	}

	for _, def := range defs {
		if err := v.Struct(def); err != nil {
			return nil, fmt.Errorf("connector %q is invalid: %w", def.Name, err)
		}
		if _, dup := c.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate connector name %q", def.Name)
		}
		c.byName[def.Name] = len(c.connectors)
		c.connectors = append(c.connectors, def.Clone())
	}

	return c, nil
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int {
	return len(c.connectors)
}

// ListAll returns copies of every definition in catalog order.
func (c *Catalog) ListAll() []ConnectorDefinition {
	out := make([]ConnectorDefinition, len(c.connectors))
	for i, def := range c.connectors {
		out[i] = def.Clone()
	}
	return out
}

// ListByType returns copies of the definitions of the given type in catalog order.
func (c *Catalog) ListByType(t ConnectorType) []ConnectorDefinition {
	var out []ConnectorDefinition
	for _, def := range c.connectors {
		if def.ConnectorType == t {
			out = append(out, def.Clone())
		}
	}
	return out
}

// FindByName returns a copy of the definition whose Name equals name exactly.
// DisplayName and ConnectorClass are not consulted.
func (c *Catalog) FindByName(name string) (ConnectorDefinition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return ConnectorDefinition{}, false
	}
	return c.connectors[i].Clone(), true
}

// Summaries returns listing rows for the definitions, optionally filtered by type.
// An empty type returns every definition.
func (c *Catalog) Summaries(t ConnectorType) []Summary {
	var out []Summary
	for _, def := range c.connectors {
		if t != "" && def.ConnectorType != t {
			continue
		}
		out = append(out, Summary{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Class:       def.ConnectorClass,
			Type:        def.ConnectorType,
			Description: def.Description,
		})
	}
	return out
}
