package mtl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Params is an insertion-ordered mapping of metadata keys to values. Values are
// scalars (string, int64, float64, Date, time.Time, TimeOfDay) or nested *Params
// for GROUP blocks. Keys are unique; setting an existing key updates it in place,
// while removing and re-inserting moves it to the end.
type Params struct {
	keys   []string
	values map[string]interface{}
}

// NewParams creates an empty ordered mapping
func NewParams() *Params {
	return &Params{values: map[string]interface{}{}}
}

// Len returns the number of keys
func (p *Params) Len() int {
	return len(p.keys)
}

// Keys returns the keys in insertion order
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Get recovers the value at the given key
func (p *Params) Get(key string) (interface{}, bool) {
	val, ok := p.values[key]
	return val, ok
}

// Set inserts a key, or updates it in place if it already exists
func (p *Params) Set(key string, value interface{}) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Delete removes a key, reporting whether it was present
func (p *Params) Delete(key string) bool {
	if _, ok := p.values[key]; !ok {
		return false
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return true
}

// PopLast removes and returns the most recently inserted key and its value
func (p *Params) PopLast() (string, interface{}, bool) {
	if len(p.keys) == 0 {
		return "", nil, false
	}
	key := p.keys[len(p.keys)-1]
	val := p.values[key]
	p.keys = p.keys[:len(p.keys)-1]
	delete(p.values, key)
	return key, val, true
}

// Group recovers the nested Params at the given key
func (p *Params) Group(key string) (*Params, bool) {
	if val, ok := p.values[key]; ok {
		if group, ok := val.(*Params); ok {
			return group, ok
		}
	}
	return nil, false
}

// String recovers the value at the given key, assuming it is a string
func (p *Params) String(key string) (string, error) {
	if val, ok := p.values[key]; !ok {
		return "", fmt.Errorf("metadata key does not exist: %s", key)
	} else if valStr, ok := val.(string); ok {
		return valStr, nil
	} else {
		return "", fmt.Errorf("could not convert metadata value to string: key=%s, value=%v", key, val)
	}
}

// Int recovers the value at the given key, assuming it is an integer
func (p *Params) Int(key string) (int64, error) {
	if val, ok := p.values[key]; !ok {
		return 0, fmt.Errorf("metadata key does not exist: %s", key)
	} else if valInt, ok := val.(int64); ok {
		return valInt, nil
	} else {
		return 0, fmt.Errorf("could not convert metadata value to int: key=%s, value=%v", key, val)
	}
}

// Float recovers the value at the given key, assuming it is a float or an integer
func (p *Params) Float(key string) (float64, error) {
	val, ok := p.values[key]
	if !ok {
		return 0, fmt.Errorf("metadata key does not exist: %s", key)
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("could not convert metadata value to float: key=%s, value=%v", key, val)
}

// Equal reports deep equality, including key order
func (p *Params) Equal(other *Params) bool {
	if p.Len() != other.Len() {
		return false
	}
	for i, key := range p.keys {
		if other.keys[i] != key {
			return false
		}
		val, otherVal := p.values[key], other.values[key]
		if group, ok := val.(*Params); ok {
			otherGroup, ok := otherVal.(*Params)
			if !ok || !group.Equal(otherGroup) {
				return false
			}
			continue
		}
		if val != otherVal {
			return false
		}
	}
	return true
}

// MarshalJSON writes the mapping as a JSON object with keys in insertion order
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Date is a calendar date without a time of day, as found in DATE_ACQUIRED fields
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON writes the date in YYYY-MM-DD form
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// TimeOfDay is a wall-clock time without a date, as found in SCENE_CENTER_TIME
// fields. Nanosecond holds the fractional second.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

func (t TimeOfDay) String() string {
	if t.Nanosecond == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Nanosecond/1000)
}

// MarshalJSON writes the time in HH:MM:SS[.ffffff] form
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
