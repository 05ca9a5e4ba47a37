// Package entity реализует нормализованные таблицы сущностей вида {byId, allIds}.
//
// Все операции работают по принципу copy-on-write: входная таблица не изменяется,
// а таблица, которую операция не затронула, возвращается без копирования.
package entity

import (
	"maps"
	"reflect"
	"slices"
)

// Identifiable реализуют сущности, у которых есть числовой идентификатор.
type Identifiable interface {
	EntityID() int64
}

// Table хранит сущности одного вида в нормализованном виде.
type Table[T any] struct {
	ByID   map[int64]T `json:"byId"`
	AllIDs []int64     `json:"allIds"`
}

// New создаёт пустую таблицу.
func New[T any]() Table[T] {
	return Table[T]{
		ByID:   map[int64]T{},
		AllIDs: []int64{},
	}
}

// FromSlice строит таблицу из списка сущностей с сохранением порядка.
// Повторный идентификатор сохраняет первую позицию и последнюю версию сущности.
func FromSlice[T Identifiable](items []T) Table[T] {
	t := Table[T]{
		ByID:   make(map[int64]T, len(items)),
		AllIDs: make([]int64, 0, len(items)),
	}
	for _, item := range items {
		id := item.EntityID()
		if _, ok := t.ByID[id]; !ok {
			t.AllIDs = append(t.AllIDs, id)
		}
		t.ByID[id] = item
	}
	return t
}

// Add вставляет или заменяет сущность. Новый идентификатор добавляется в конец AllIDs.
func Add[T Identifiable](t Table[T], e T) Table[T] {
	id := e.EntityID()
	if unchanged(t, id, e) {
		return t
	}
	out := Table[T]{ByID: cloneMap(t.ByID, 1), AllIDs: t.AllIDs}
	if _, ok := t.ByID[id]; !ok {
		out.AllIDs = appendID(t.AllIDs, id)
	}
	out.ByID[id] = e
	return out
}

// Merge вливает пакет сущностей в таблицу. Сущность из пакета полностью заменяет
// существующую, идентификаторы сохраняют исходные позиции, новые дописываются в конец.
// Идентификаторы из incoming.AllIDs без сущности в incoming.ByID пропускаются.
// Если пакет ничего не меняет, возвращается сама t.
func Merge[T any](t, incoming Table[T]) Table[T] {
	if len(incoming.AllIDs) == 0 || contains(t, incoming) {
		return t
	}

	out := Table[T]{
		ByID:   cloneMap(t.ByID, len(incoming.AllIDs)),
		AllIDs: slices.Clip(t.AllIDs),
	}
	for _, id := range incoming.AllIDs {
		e, ok := incoming.ByID[id]
		if !ok {
			continue
		}
		if _, exists := out.ByID[id]; !exists {
			out.AllIDs = append(out.AllIDs, id)
		}
		out.ByID[id] = e
	}
	if out.AllIDs == nil {
		out.AllIDs = []int64{}
	}
	return out
}

// contains сообщает, что каждая сущность пакета уже есть в t в том же виде.
func contains[T any](t, incoming Table[T]) bool {
	for _, id := range incoming.AllIDs {
		e, ok := incoming.ByID[id]
		if ok && !unchanged(t, id, e) {
			return false
		}
	}
	return true
}

func unchanged[T any](t Table[T], id int64, e T) bool {
	old, ok := t.ByID[id]
	return ok && reflect.DeepEqual(old, e)
}

// Remove удаляет сущность по идентификатору. Отсутствующий идентификатор не является ошибкой.
func Remove[T any](t Table[T], id int64) Table[T] {
	_, inMap := t.ByID[id]
	if !inMap && !slices.Contains(t.AllIDs, id) {
		return t
	}

	byID := cloneMap(t.ByID, 0)
	delete(byID, id)

	allIDs := make([]int64, 0, len(t.AllIDs))
	for _, existing := range t.AllIDs {
		if existing != id {
			allIDs = append(allIDs, existing)
		}
	}

	return Table[T]{ByID: byID, AllIDs: allIDs}
}

// Update применяет fn к существующей сущности. Если сущности нет, таблица возвращается
// без изменений, а ok равен false: новая сущность при этом не создаётся.
func Update[T any](t Table[T], id int64, fn func(T) T) (Table[T], bool) {
	e, ok := t.ByID[id]
	if !ok {
		return t, false
	}
	out := Table[T]{ByID: cloneMap(t.ByID, 0), AllIDs: t.AllIDs}
	out.ByID[id] = fn(e)
	return out, true
}

// Get возвращает сущность по идентификатору.
func (t Table[T]) Get(id int64) (T, bool) {
	e, ok := t.ByID[id]
	return e, ok
}

// Has сообщает, есть ли сущность в таблице.
func (t Table[T]) Has(id int64) bool {
	_, ok := t.ByID[id]
	return ok
}

// Len возвращает количество сущностей.
func (t Table[T]) Len() int {
	return len(t.AllIDs)
}

// Values возвращает сущности в порядке AllIDs.
func (t Table[T]) Values() []T {
	res := make([]T, 0, len(t.AllIDs))
	for _, id := range t.AllIDs {
		if e, ok := t.ByID[id]; ok {
			res = append(res, e)
		}
	}
	return res
}

func cloneMap[T any](m map[int64]T, extra int) map[int64]T {
	out := make(map[int64]T, len(m)+extra)
	maps.Copy(out, m)
	return out
}

// appendID никогда не пишет в общий с исходной таблицей массив.
func appendID(ids []int64, id int64) []int64 {
	out := make([]int64, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}
