// Package registry holds the static per-resource-type search
// configuration: which fields a keyword is matched against, which
// filters are always applied, and how raw records are projected into
// responses. The table is immutable after load and shared read-only by
// all requests.
package registry

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lookouthq/lookout/api/pkg/filter"
	"github.com/lookouthq/lookout/api/pkg/template"
	"github.com/lookouthq/lookout/api/pkg/types"
)

// Config is the serializable form of the descriptor table. The built-in
// table is expressed in it and an operator-supplied YAML file can add or
// override entries.
type Config struct {
	ResourceTypes map[string]TypeConfig `yaml:"resource_types"`
}

type TypeConfig struct {
	Search        []string       `yaml:"search"`
	Filter        []FilterConfig `yaml:"filter,omitempty"`
	ProjectScoped bool           `yaml:"project_scoped,omitempty"`
	Response      ResponseConfig `yaml:"response"`
}

// FilterConfig is one static clause: an equality when Value is set, a
// negative membership test when NotIn is set.
type FilterConfig struct {
	Field string   `yaml:"field"`
	Value string   `yaml:"value,omitempty"`
	NotIn []string `yaml:"not_in,omitempty"`
}

type ResponseConfig struct {
	ResourceID  string            `yaml:"resource_id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Tags        map[string]string `yaml:"tags,omitempty"`
	Aliases     []AliasConfig     `yaml:"aliases,omitempty"`
}

type AliasConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Format string `yaml:"format,omitempty"`
}

// Descriptor is the compiled, immutable form of one resource type's
// configuration.
type Descriptor struct {
	ResourceType    string
	SearchFields    []string
	StaticFilters   []filter.Expr
	ProjectScoped   bool
	ResourceIDField string
	Name            *template.Template
	Description     *template.Template
	// Tags maps an output tag key to the source field path it is copied
	// from; absent source fields are omitted, not an error.
	Tags map[string]string
	// Aliases run in declaration order, first non-null source wins and
	// an already-set target is never overwritten.
	Aliases []AliasRule
}

type AliasRule struct {
	Source string
	Target string
	Format *template.Template
}

type Registry struct {
	descriptors map[string]*Descriptor
	knownTypes  []string
}

// New compiles a config into a registry, validating every template up
// front so requests never hit a malformed descriptor.
func New(cfg *Config) (*Registry, error) {
	registry := &Registry{
		descriptors: map[string]*Descriptor{},
	}
	for resourceType, typeConfig := range cfg.ResourceTypes {
		descriptor, err := compile(resourceType, typeConfig)
		if err != nil {
			return nil, err
		}
		registry.descriptors[resourceType] = descriptor
		registry.knownTypes = append(registry.knownTypes, resourceType)
	}
	sort.Strings(registry.knownTypes)
	return registry, nil
}

// Default builds the registry from the built-in table.
func Default() (*Registry, error) {
	return New(builtinConfig())
}

// Load builds the registry from the built-in table, with entries from
// the given YAML file (if any) merged over it. An empty path means
// built-ins only.
func Load(path string) (*Registry, error) {
	cfg := builtinConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading search config %s: %w", path, err)
		}
		var override Config
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("parsing search config %s: %w", path, err)
		}
		for resourceType, typeConfig := range override.ResourceTypes {
			cfg.ResourceTypes[resourceType] = typeConfig
		}
	}
	return New(cfg)
}

func compile(resourceType string, cfg TypeConfig) (*Descriptor, error) {
	if len(cfg.Search) == 0 {
		return nil, fmt.Errorf("resource type %s: no searchable fields", resourceType)
	}
	if cfg.Response.ResourceID == "" {
		return nil, fmt.Errorf("resource type %s: no resource_id field", resourceType)
	}

	name, err := template.Compile(cfg.Response.Name)
	if err != nil {
		return nil, fmt.Errorf("resource type %s: name template: %w", resourceType, err)
	}

	descriptor := &Descriptor{
		ResourceType:    resourceType,
		SearchFields:    cfg.Search,
		ProjectScoped:   cfg.ProjectScoped,
		ResourceIDField: cfg.Response.ResourceID,
		Name:            name,
		Tags:            cfg.Response.Tags,
	}

	if cfg.Response.Description != "" {
		description, err := template.Compile(cfg.Response.Description)
		if err != nil {
			return nil, fmt.Errorf("resource type %s: description template: %w", resourceType, err)
		}
		descriptor.Description = description
	}

	for _, staticFilter := range cfg.Filter {
		switch {
		case len(staticFilter.NotIn) > 0:
			descriptor.StaticFilters = append(descriptor.StaticFilters,
				filter.Nin(staticFilter.Field, staticFilter.NotIn))
		case staticFilter.Value != "":
			descriptor.StaticFilters = append(descriptor.StaticFilters,
				filter.Eq(staticFilter.Field, staticFilter.Value))
		default:
			return nil, fmt.Errorf("resource type %s: static filter on %q has neither value nor not_in",
				resourceType, staticFilter.Field)
		}
	}

	for _, alias := range cfg.Response.Aliases {
		rule := AliasRule{Source: alias.Source, Target: alias.Target}
		if alias.Format != "" {
			format, err := template.Compile(alias.Format)
			if err != nil {
				return nil, fmt.Errorf("resource type %s: alias %s format: %w", resourceType, alias.Target, err)
			}
			rule.Format = format
		}
		descriptor.Aliases = append(descriptor.Aliases, rule)
	}

	return descriptor, nil
}

// Describe validates a requested resource type. Unknown types fail fast
// with the enumerated valid-type list in the error.
func (r *Registry) Describe(resourceType string) (*Descriptor, error) {
	descriptor, ok := r.descriptors[resourceType]
	if !ok {
		return nil, &types.InvalidResourceTypeError{
			ResourceType: resourceType,
			ValidTypes:   r.ListKnownTypes(),
		}
	}
	return descriptor, nil
}

// ListKnownTypes returns the sorted set of searchable resource types.
func (r *Registry) ListKnownTypes() []string {
	return r.knownTypes
}
