package logging

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// RequestID adds a request ID field.
func RequestID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("request_id", id)
	}
}

// Algorithm adds the search algorithm.
func Algorithm(a planning.Algorithm) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("algorithm", a.String())
	}
}

// Mode adds the solution mode.
func Mode(m planning.Mode) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("mode", m.String())
	}
}

// Bound adds the depth bound.
func Bound(bound int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("bound", bound)
	}
}

// Stats adds search statistics.
func Stats(s planning.Stats) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("expanded", s.Expanded).Int("generated", s.Generated).Int("max_depth", s.MaxDepth)
	}
}

// Discontentment adds a discontentment value.
func Discontentment(d float64) Field {
	return Float("discontentment", d)
}

// PlanLength adds the number of steps in a plan.
func PlanLength(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("steps", n)
	}
}

// Complete adds whether a plan satisfies every goal.
func Complete(complete bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("complete", complete)
	}
}

// Duration adds a wall-clock duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Cached adds a cached field.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// CacheKey adds a cache key field.
func CacheKey(key string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("cache_key", key)
	}
}

// Backend adds a storage backend name.
func Backend(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("backend", name)
	}
}

// Path adds a file path field.
func Path(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", path)
	}
}

// FromState adds a from_state field for lifecycle transitions.
func FromState(s string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", s)
	}
}

// ToState adds a to_state field for lifecycle transitions.
func ToState(s string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_state", s)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Int adds an integer field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}

// Float adds a float field with custom key, formatted in shortest form.
func Float(key string, value float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, strconv.FormatFloat(value, 'g', -1, 64))
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
