package config

// Merge combines the primary config with the legacy one.
//
// With one side nil the other is returned as is. Otherwise primary wins on
// every top-level key it sets; project and commands merge key by key with
// primary winning collisions; rules are legacy followed by primary.
// Neither input is modified.
func Merge(primary, legacy *Config) *Config {
	switch {
	case primary == nil && legacy == nil:
		return nil
	case legacy == nil:
		return primary
	case primary == nil:
		return legacy
	}

	out := primary.Clone()

	out.Project = mergeProject(primary.Project, legacy.Project)

	if primary.Commands != nil || legacy.Commands != nil {
		cmds := make(map[string]string, len(primary.Commands)+len(legacy.Commands))
		for k, v := range legacy.Commands {
			cmds[k] = v
		}
		for k, v := range primary.Commands {
			cmds[k] = v
		}
		out.Commands = cmds
	}

	if primary.Rules != nil || legacy.Rules != nil {
		rules := make([]string, 0, len(legacy.Rules)+len(primary.Rules))
		rules = append(rules, legacy.Rules...)
		rules = append(rules, primary.Rules...)
		out.Rules = rules
	}

	// Keys only the legacy side carries.
	l := legacy.Clone()
	if out.Security == nil {
		out.Security = l.Security
	}
	if out.Notifications == nil {
		out.Notifications = l.Notifications
	}
	if out.Tools == nil {
		out.Tools = l.Tools
	}
	if out.Metadata == nil {
		out.Metadata = l.Metadata
	}
	if out.Conventions == nil {
		out.Conventions = l.Conventions
	}
	return out
}

func mergeProject(primary, legacy *Project) *Project {
	if primary == nil && legacy == nil {
		return nil
	}
	var p Project
	if legacy != nil {
		p = *legacy
	}
	if primary == nil {
		return &p
	}
	if primary.Name != "" {
		p.Name = primary.Name
	}
	if primary.Type != "" {
		p.Type = primary.Type
	}
	if primary.Description != "" {
		p.Description = primary.Description
	}
	if primary.Language != "" {
		p.Language = primary.Language
	}
	if primary.Framework != "" {
		p.Framework = primary.Framework
	}
	return &p
}
