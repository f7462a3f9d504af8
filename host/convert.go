package host

import (
	"fmt"
	"time"

	starlarkLib "go.starlark.net/starlark"
	starlarkTime "go.starlark.net/lib/time"
)

// toStarlarkValue converts configuration values, as decoded from TOML or
// built by the host, into Starlark values.
func toStarlarkValue(v any) (starlarkLib.Value, error) {
	if v == nil {
		return starlarkLib.None, nil
	}

	switch val := v.(type) {
	case starlarkLib.Value:
		return val, nil
	case bool:
		return starlarkLib.Bool(val), nil
	case int:
		return starlarkLib.MakeInt(val), nil
	case int64:
		return starlarkLib.MakeInt64(val), nil
	case float64:
		return starlarkLib.Float(val), nil
	case string:
		return starlarkLib.String(val), nil
	case time.Time:
		return starlarkTime.Time(val), nil
	case time.Duration:
		return starlarkTime.Duration(val), nil
	case []string:
		elems := make([]starlarkLib.Value, len(val))
		for i, s := range val {
			elems[i] = starlarkLib.String(s)
		}
		return starlarkLib.NewList(elems), nil
	case []any:
		elems := make([]starlarkLib.Value, len(val))
		for i, elem := range val {
			sv, err := toStarlarkValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			elems[i] = sv
		}
		return starlarkLib.NewList(elems), nil
	case []map[string]any:
		elems := make([]starlarkLib.Value, len(val))
		for i, elem := range val {
			sv, err := toStarlarkValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			elems[i] = sv
		}
		return starlarkLib.NewList(elems), nil
	case map[string]any:
		dict := starlarkLib.NewDict(len(val))
		for k, elem := range val {
			sv, err := toStarlarkValue(elem)
			if err != nil {
				return nil, fmt.Errorf("dict value %q: %w", k, err)
			}
			if err := dict.SetKey(starlarkLib.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
