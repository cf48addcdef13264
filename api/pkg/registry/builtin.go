package registry

// builtinConfig is the default descriptor table. Operators can extend or
// override it with a YAML file, see Load.
func builtinConfig() *Config {
	return &Config{
		ResourceTypes: map[string]TypeConfig{
			"identity.ServiceAccount": {
				Search: []string{
					"name",
					"data.account_id",
					"data.subscription_id",
					"data.tenant_id",
					"data.project_id",
				},
				ProjectScoped: true,
				Response: ResponseConfig{
					ResourceID: "service_account_id",
					Name:       "{account} ({name})",
					Aliases: []AliasConfig{
						{Source: "data.account_id", Target: "account"},
						{Source: "data.subscription_id", Target: "account"},
						{Source: "data.project_id", Target: "account"},
						{Source: "service_account_id", Target: "account"},
					},
				},
			},
			"identity.Project": {
				Search:        []string{"name"},
				ProjectScoped: true,
				Response: ResponseConfig{
					ResourceID: "project_id",
					Name:       "{name}",
				},
			},
			"identity.Workspace": {
				Search: []string{"name"},
				// a negative filter, not an enabled-workspace enumeration,
				// so it stays correct as workspaces are added
				Filter: []FilterConfig{
					{Field: "state", NotIn: []string{"DISABLED", "DELETED"}},
				},
				Response: ResponseConfig{
					ResourceID: "workspace_id",
					Name:       "{name}",
				},
			},
			"inventory.CloudServiceType": {
				Search: []string{"name", "group", "provider"},
				Response: ResponseConfig{
					ResourceID: "cloud_service_type_id",
					Name:       "{group} > {name}",
					Aliases: []AliasConfig{
						{Source: "tags.lookout:icon", Target: "icon"},
					},
					Tags: map[string]string{
						"provider": "provider",
						"icon":     "icon",
						"group":    "group",
						"name":     "name",
					},
				},
			},
			"inventory.CloudService": {
				Search:        []string{"name", "ip_addresses", "account", "instance_type"},
				ProjectScoped: true,
				Filter: []FilterConfig{
					{Field: "state", Value: "ACTIVE"},
				},
				Response: ResponseConfig{
					ResourceID:  "cloud_service_id",
					Name:        "{name}",
					Description: "{cloud_service_group} > {cloud_service_type}",
				},
			},
			"dashboard.PublicDashboard": {
				Search:        []string{"name"},
				ProjectScoped: true,
				Response: ResponseConfig{
					ResourceID:  "public_dashboard_id",
					Name:        "{name}",
					Description: "{description}",
				},
			},
		},
	}
}
