package logging

import "log/slog"

// Field names shared by the dashboard backend, the API client and the CLI.
const (
	FieldService        = "service"
	FieldRequestID      = "request_id"
	FieldSessionID      = "session_id"
	FieldGroupID        = "group_id"
	FieldSourceID       = "source_id"
	FieldEventID        = "event_id"
	FieldDeliveryID     = "delivery_id"
	FieldSubscriptionID = "subscription_id"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatus         = "status"
	FieldDuration       = "duration_ms"
	FieldError          = "error"
)

func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

func SessionID(id string) slog.Attr {
	return slog.String(FieldSessionID, id)
}

// GroupID is the tenant (project) the call was scoped to.
func GroupID(id string) slog.Attr {
	return slog.String(FieldGroupID, id)
}

func SourceID(id string) slog.Attr {
	return slog.String(FieldSourceID, id)
}

func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

func DeliveryID(id string) slog.Attr {
	return slog.String(FieldDeliveryID, id)
}

func SubscriptionID(id string) slog.Attr {
	return slog.String(FieldSubscriptionID, id)
}

func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error. A nil error yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
