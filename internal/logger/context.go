package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are added to every record logged with a context that carries them.
type LogFields struct {
	OrgID        string
	CompetitorID string
	View         string // funnel view name
	Component    string // e.g. "insights.scheduler"
}

// WithLogFields merges fields into the context. Non-empty values in fields
// replace existing ones.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.OrgID != "" {
		merged.OrgID = fields.OrgID
	}
	if fields.CompetitorID != "" {
		merged.CompetitorID = fields.CompetitorID
	}
	if fields.View != "" {
		merged.View = fields.View
	}
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields stored in ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}
