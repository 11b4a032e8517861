package args

import (
	"fmt"
	"strings"
	"time"

	"github.com/slate-ml/slate-api-types/misc/rfctime"
)

type KeyValue struct {
	Key   string
	Value string
}

// KeyValues collects values of a repeatable KEY=VALUE flag, in order.
type KeyValues []KeyValue

func (kvs *KeyValues) String() string {
	if kvs == nil {
		return ""
	}
	expr := make([]string, 0, len(*kvs))
	for _, kv := range *kvs {
		expr = append(expr, kv.Key+"="+kv.Value)
	}
	return strings.Join(expr, ",")
}

func (kvs *KeyValues) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("not KEY=VALUE form: %s", s)
	}
	*kvs = append(*kvs, KeyValue{Key: key, Value: value})
	return nil
}

// Map flattens kvs. Later values win for a repeated key.
func (kvs KeyValues) Map() map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

// Argslice collects values of a repeatable flag, in order.
type Argslice []string

func (s *Argslice) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%v", *s)
}

func (s *Argslice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// LooseRFC3339 is a flag taking RFC3339 date-time, abbreviated forms allowed.
type LooseRFC3339 time.Time

func (t *LooseRFC3339) String() string {
	if t == nil {
		return ""
	}
	return time.Time(*t).Format(rfctime.RFC3339DateTimeFormatZ)
}

func (t *LooseRFC3339) Set(v string) error {
	parsedTime, err := rfctime.ParseLooseRFC3339(v)
	if err != nil {
		return err
	}
	*t = LooseRFC3339(parsedTime.Time())
	return nil
}

func (t *LooseRFC3339) Time() *time.Time {
	if t == nil {
		return nil
	}
	return (*time.Time)(t)
}

// OptionalLooseRFC3339 is like LooseRFC3339, tracking whether it is set.
type OptionalLooseRFC3339 struct {
	v     time.Time
	isSet bool
}

func (t *OptionalLooseRFC3339) String() string {
	if t == nil || !t.isSet {
		return ""
	}
	return t.v.Format(rfctime.RFC3339DateTimeFormatZ)
}

func (t *OptionalLooseRFC3339) Set(v string) error {
	got, err := rfctime.ParseLooseRFC3339(v)
	if err != nil {
		return err
	}
	t.v = got.Time()
	t.isSet = true
	return nil
}

func (t *OptionalLooseRFC3339) Time() *time.Time {
	if t == nil || !t.isSet {
		return nil
	}
	return &t.v
}

// OptionalDuration is a flag taking time.Duration, tracking whether it is set.
type OptionalDuration struct {
	d     time.Duration
	isSet bool
}

func (t *OptionalDuration) String() string {
	if t == nil || !t.isSet {
		return ""
	}
	return t.d.String()
}

func (t *OptionalDuration) Set(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	t.d = d
	t.isSet = true
	return nil
}

func (t *OptionalDuration) Duration() *time.Duration {
	if t == nil || !t.isSet {
		return nil
	}
	return &t.d
}
