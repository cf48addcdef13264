// Package render projects raw datastore records into the caller-facing
// response shape using the resource type's descriptor.
package render

import (
	"fmt"

	"github.com/lookouthq/lookout/api/pkg/registry"
	"github.com/lookouthq/lookout/api/pkg/template"
	"github.com/lookouthq/lookout/api/pkg/types"
)

// Records shapes a page of records. Alias rules run first so templates
// can reference alias targets; a name or description template hitting a
// missing field fails the whole call, it is never papered over with an
// empty name.
func Records(records []types.ResourceRecord, descriptor *registry.Descriptor) ([]*types.SearchResult, error) {
	results := make([]*types.SearchResult, 0, len(records))
	for _, record := range records {
		result, err := one(record, descriptor)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func one(record types.ResourceRecord, descriptor *registry.Descriptor) (*types.SearchResult, error) {
	applyAliases(record, descriptor.Aliases)

	name, field, err := descriptor.Name.Render(record)
	if err != nil {
		return nil, &types.TemplateRenderError{
			ResourceType: descriptor.ResourceType,
			Field:        field,
		}
	}

	result := &types.SearchResult{
		Name:        name,
		DomainID:    stringField(record, "domain_id"),
		WorkspaceID: stringField(record, "workspace_id"),
		ProjectID:   stringField(record, "project_id"),
	}

	if descriptor.Description != nil {
		description, field, err := descriptor.Description.Render(record)
		if err != nil {
			return nil, &types.TemplateRenderError{
				ResourceType: descriptor.ResourceType,
				Field:        field,
			}
		}
		result.Description = description
	}

	for tagKey, sourcePath := range descriptor.Tags {
		value, ok := template.Lookup(record, sourcePath)
		if !ok || value == nil {
			// absent tag sources are omitted, not an error
			continue
		}
		if result.Tags == nil {
			result.Tags = map[string]string{}
		}
		result.Tags[tagKey] = fmt.Sprintf("%v", value)
	}

	if value, ok := template.Lookup(record, descriptor.ResourceIDField); ok {
		result.ResourceID = fmt.Sprintf("%v", value)
	}

	return result, nil
}

// applyAliases copies the first non-null source into each alias target.
// Targets already present on the record are never overwritten, so the
// declaration order decides which source wins.
func applyAliases(record types.ResourceRecord, rules []registry.AliasRule) {
	for _, rule := range rules {
		if existing, ok := record[rule.Target]; ok && existing != nil {
			continue
		}
		value, ok := template.Lookup(record, rule.Source)
		if !ok || value == nil {
			continue
		}
		if rule.Format != nil {
			formatted, _, err := rule.Format.Render(record)
			if err != nil {
				continue
			}
			record[rule.Target] = formatted
			continue
		}
		record[rule.Target] = value
	}
}

func stringField(record types.ResourceRecord, field string) string {
	if value, ok := record[field]; ok && value != nil {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}
