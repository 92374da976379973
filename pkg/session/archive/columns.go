package archive

import (
	"fmt"
	"math"
	"time"
)

// columns is the column oriented table format as written by the exporter:
// {"Driver": ["VER", ...], "LapTime": [91.2, null, ...], ...}
type columns struct {
	data map[string][]any
	rows int
}

func newColumns(raw any, required ...string) (*columns, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", raw)
	}
	ret := &columns{data: make(map[string][]any, len(obj)), rows: -1}
	for name, v := range obj {
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("column %s: expected list, got %T", name, v)
		}
		if ret.rows >= 0 && len(list) != ret.rows {
			return nil, fmt.Errorf("column %s: expected %d rows, got %d",
				name, ret.rows, len(list))
		}
		ret.rows = len(list)
		ret.data[name] = list
	}
	for _, name := range required {
		if _, ok := ret.data[name]; !ok {
			return nil, fmt.Errorf("missing required column %s", name)
		}
	}
	if ret.rows < 0 {
		ret.rows = 0
	}
	return ret, nil
}

func (c *columns) has(name string) bool {
	_, ok := c.data[name]
	return ok
}

func (c *columns) value(name string, row int) any {
	col, ok := c.data[name]
	if !ok {
		return nil
	}
	return col[row]
}

func (c *columns) float(name string, row int) (float64, bool) {
	switch v := c.value(name, row).(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 100, true
		}
		return 0, true
	}
	return 0, false
}

// floatOrNaN is used for telemetry channels where NaN marks missing values
func (c *columns) floatOrNaN(name string, row int) float64 {
	if f, ok := c.float(name, row); ok {
		return f
	}
	return math.NaN()
}

func (c *columns) floatPtr(name string, row int) *float64 {
	if f, ok := c.float(name, row); ok {
		return &f
	}
	return nil
}

func (c *columns) intPtr(name string, row int) *int {
	if f, ok := c.float(name, row); ok {
		i := int(f)
		return &i
	}
	return nil
}

// seconds converts a column holding seconds into a duration
func (c *columns) seconds(name string, row int) *time.Duration {
	if f, ok := c.float(name, row); ok {
		d := time.Duration(math.Round(f * float64(time.Second)))
		return &d
	}
	return nil
}

func (c *columns) str(name string, row int) string {
	switch v := c.value(name, row).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (c *columns) boolPtr(name string, row int) *bool {
	if b, ok := c.value(name, row).(bool); ok {
		return &b
	}
	return nil
}
