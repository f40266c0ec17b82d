package docgen

func mergeTemplateOptions(base TemplateOptions, override TemplateOptions) TemplateOptions {
	out := base
	if override.TemplateName != "" {
		out.TemplateName = override.TemplateName
	}
	if override.Layout != "" {
		out.Layout = override.Layout
	}
	if override.Title != "" {
		out.Title = override.Title
	}
	if !override.GeneratedAt.IsZero() {
		out.GeneratedAt = override.GeneratedAt
	}
	out.Data = mergeTemplateMap(out.Data, override.Data)
	return out
}

func mergeTemplateMap(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
