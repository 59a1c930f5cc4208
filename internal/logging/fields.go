package logging

// Shared attribute keys. Keep these stable; dashboards and log filters
// grep for them.
const (
	FieldComponent = "component"
	FieldItemID    = "item"
	FieldMutation  = "type"
	FieldEntityID  = "entity"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
)
