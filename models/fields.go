package models

import "encoding/json"

// Optional различает три состояния поля в PATCH-запросе: поле отсутствует
// в JSON (Set=false), передано как null (Set=true, Null=true) или передано
// со значением. Частичные обновления не затирают колонки, которых клиент
// не касался.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr возвращает значение как указатель: nil для отсутствующего или null поля.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// HasValue сообщает, что поле передано и не равно null.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}
