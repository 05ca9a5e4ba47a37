package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Collection декодирует коллекцию сущностей, которую бэкенд отдаёт либо массивом,
// либо уже нормализованным объектом {byId, allIds}.
type Collection[T Identifiable] struct {
	Table[T]
}

// UnmarshalJSON реализует json.Unmarshaler.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.Table = New[T]()
		return nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode entity list: %w", err)
		}
		c.Table = FromSlice(items)
		return nil
	}

	var t Table[T]
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return fmt.Errorf("decode entity table: %w", err)
	}
	c.Table = normalize(t)
	return nil
}

// normalize восстанавливает инварианты таблицы, пришедшей по сети: убирает повторы
// в allIds и идентификаторы без сущности, дописывает сущности, которых нет в allIds.
func normalize[T Identifiable](t Table[T]) Table[T] {
	out := Table[T]{
		ByID:   make(map[int64]T, len(t.ByID)),
		AllIDs: make([]int64, 0, len(t.AllIDs)),
	}
	for _, id := range t.AllIDs {
		e, ok := t.ByID[id]
		if !ok {
			continue
		}
		if _, seen := out.ByID[id]; seen {
			continue
		}
		out.ByID[id] = e
		out.AllIDs = append(out.AllIDs, id)
	}

	var missing []int64
	for id := range t.ByID {
		if _, seen := out.ByID[id]; !seen {
			missing = append(missing, id)
		}
	}
	// порядок ключей map не определён
	slices.Sort(missing)
	for _, id := range missing {
		out.ByID[id] = t.ByID[id]
		out.AllIDs = append(out.AllIDs, id)
	}
	return out
}
