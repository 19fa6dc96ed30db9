package event

import "fmt"

// Keys accepted in a field mapping, matching the wire field names.
const (
	fieldData    = "data"
	fieldEvent   = "event"
	fieldID      = "id"
	fieldRetry   = "retry"
	fieldComment = "comment"
	fieldSep     = "sep"
)

// Marshal coerces anything event-shaped into a finished wire frame:
//
//   - []byte passes through untouched: the caller already encoded it,
//     and encoding is idempotent from there on.
//   - Event and BytesEvent, by value or pointer, encode directly. An
//     explicit separator on the event wins over sep.
//   - map[string]any builds a text Event from wire field names ("data",
//     "event", "id", "retry", "comment", "sep"), with sep taking the
//     place of any "sep" entry. Unknown keys and ill-typed values are
//     errors.
//   - Anything else becomes the data payload of a text Event with sep
//     as its separator.
//
// An empty sep leaves each representation's own default in place.
func Marshal(v any, sep string) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case *Event:
		return v.Encode(), nil
	case Event:
		return v.Encode(), nil
	case *BytesEvent:
		return v.Encode(), nil
	case BytesEvent:
		return v.Encode(), nil
	case map[string]any:
		e, err := fromFields(v, sep)
		if err != nil {
			return nil, err
		}
		return e.Encode(), nil
	default:
		return New(v, WithSeparator(sep)).Encode(), nil
	}
}

// fromFields builds a text Event from a wire-name field mapping. The
// mapping is never mutated. A non-empty dispatch separator overrides
// the mapping's own "sep" entry.
func fromFields(fields map[string]any, sep string) (*Event, error) {
	e := &Event{}
	mapSep := ""
	for name, value := range fields {
		switch name {
		case fieldData:
			e.Data = stringify(value)
		case fieldEvent:
			s, err := asString(name, value)
			if err != nil {
				return nil, err
			}
			e.Name = s
		case fieldID:
			s, err := asString(name, value)
			if err != nil {
				return nil, err
			}
			e.ID = s
		case fieldRetry:
			millis, ok := asInt(value)
			if !ok {
				return nil, fmt.Errorf("%w, got %T", ErrRetryNotInteger, value)
			}
			e.Retry = millis
		case fieldComment:
			s, err := asString(name, value)
			if err != nil {
				return nil, err
			}
			e.Comment = s
		case fieldSep:
			s, err := asString(name, value)
			if err != nil {
				return nil, err
			}
			mapSep = s
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownField, name)
		}
	}

	e.Sep = sep
	if e.Sep == "" {
		e.Sep = mapSep
	}
	return e, nil
}

func asString(name string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrFieldType, name, value)
	}
	return s, nil
}

// asInt accepts the Go integer kinds and widens them to int. Strings,
// floats and booleans do not qualify, no matter how integral they look.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	default:
		return 0, false
	}
}
