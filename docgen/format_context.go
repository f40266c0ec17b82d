package docgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type formatContext struct {
	locale   string
	location *time.Location
}

func newFormatContext(opts FormatOptions) (formatContext, error) {
	ctx := formatContext{locale: strings.TrimSpace(opts.Locale)}
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return formatContext{}, NewError(KindValidation, "invalid timezone", err)
		}
		ctx.location = loc
	}
	return ctx, nil
}

func (f formatContext) applyTimezone(value time.Time) time.Time {
	if f.location == nil {
		return value
	}
	return value.In(f.location)
}

// formatTimestamp renders a time in the request timezone. An empty layout
// falls back to RFC 3339 and zero times render empty.
func (f formatContext) formatTimestamp(value time.Time, layout string) string {
	if value.IsZero() {
		return ""
	}
	if strings.TrimSpace(layout) == "" {
		layout = time.RFC3339
	}
	return f.applyTimezone(value).Format(layout)
}

// formatMetaValue renders a metadata value as display text, coercing
// timestamps into the request timezone.
func (f formatContext) formatMetaValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case time.Time, *time.Time:
		if parsed, ok := coerceTime(v); ok {
			return f.formatTimestamp(parsed, "")
		}
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return stringify(v)
	}
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func coerceTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		parsed, ok := parseTimeString(v)
		if !ok {
			return time.Time{}, false
		}
		return parsed, true
	case int:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return time.Unix(parsed, 0), true
		}
		floatValue, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(int64(floatValue), 0), true
	default:
		return time.Time{}, false
	}
}

func parseTimeString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
