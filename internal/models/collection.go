package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeCollection разбирает ответ API со списком ресурсов.
// Поддерживаются голый массив и объект-обёртка вида {"<key>": [...]} или {"data": [...]}.
// Обёртка без известного ключа и null дают пустой список.
func DecodeCollection[T any](body []byte, key string) ([]T, error) {
	body = bytes.TrimSpace(body)
	items := []T{}

	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return items, nil
	}

	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode %s list: %w", key, err)
		}
		return items, nil
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode %s wrapper: %w", key, err)
		}
		for _, k := range []string{key, "data"} {
			raw, ok := wrapped[k]
			if !ok {
				continue
			}
			return DecodeCollection[T](raw, key)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("decode %s: unexpected body %q", key, truncate(body, 64))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
