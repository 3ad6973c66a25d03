package bytealign

import (
	"reflect"

	"github.com/pkg/errors"
)

// Align realigns every byte field reachable from v according to the
// schema of typeName, following nested and repeated message fields.
// Aligned buffers are left untouched, so an already-aligned payload keeps
// reference equality with its input. v must be a non-nil struct pointer.
func (s SchemaSet) Align(v interface{}, typeName string) error {
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	return s.walk(rv, typeName, map[uintptr]bool{}, func(f reflect.Value) error {
		b := f.Bytes()
		if !Aligned(b) {
			f.SetBytes(Realign(b))
		}
		return nil
	}, nil)
}

// AttachView attaches a float32 view to every message reachable from v
// whose schema declares a buffer/count pair. The buffer is realigned
// first if needed, so the view always shares storage with the field the
// message ends up carrying. An empty buffer yields no view; a non-empty
// buffer holding fewer complete float32s than the declared count is an
// error.
func (s SchemaSet) AttachView(v interface{}, typeName string) error {
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	return s.walk(rv, typeName, map[uintptr]bool{}, nil, s.attach)
}

// Collect gathers every non-empty byte buffer reachable from v, in schema
// order. The result is the transfer set handed to the IPC layer.
func (s SchemaSet) Collect(v interface{}, typeName string) ([][]byte, error) {
	rv, err := structValue(v)
	if err != nil {
		return nil, err
	}
	var bufs [][]byte
	err = s.walk(rv, typeName, map[uintptr]bool{}, func(f reflect.Value) error {
		if b := f.Bytes(); len(b) > 0 {
			bufs = append(bufs, b)
		}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return bufs, nil
}

func structValue(v interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.Errorf("expected a non-nil struct pointer, got %T", v)
	}
	return rv, nil
}

// walk visits v and every message reachable from it through the schema.
// onBytes runs for each settable []byte field (including repeated and
// map-valued elements, which are written back). onMessage runs once per
// visited message. Pointer cycles are visited once.
func (s SchemaSet) walk(rv reflect.Value, typeName string, seen map[uintptr]bool, onBytes func(reflect.Value) error, onMessage func(reflect.Value, Message) error) error {
	if rv.Kind() != reflect.Ptr {
		return errors.Errorf("schema entry %s expects struct pointers, got %s", typeName, rv.Kind())
	}
	if rv.IsNil() || seen[rv.Pointer()] {
		return nil
	}
	if rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("schema entry %s expects struct pointers, got %s", typeName, rv.Type())
	}
	seen[rv.Pointer()] = true

	schema, ok := s[typeName]
	if !ok {
		return nil
	}
	elem := rv.Elem()

	if onMessage != nil {
		if err := onMessage(elem, schema); err != nil {
			return err
		}
	}

	if onBytes != nil {
		for _, name := range schema.ByteFields {
			f, err := byteField(elem, typeName, name)
			if err != nil {
				return err
			}
			if err := onBytes(f); err != nil {
				return err
			}
		}
		for _, name := range schema.RepeatedByteFields {
			f := elem.FieldByName(name)
			switch {
			case f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.Slice:
				for i := 0; i < f.Len(); i++ {
					if err := onBytes(f.Index(i)); err != nil {
						return err
					}
				}
			case f.Kind() == reflect.Map:
				if err := mapBytes(f, onBytes); err != nil {
					return err
				}
			default:
				return errors.Errorf("type %s: field %s is not a repeated bytes field", typeName, name)
			}
		}
	}

	for _, ref := range schema.MessageFields {
		f := elem.FieldByName(ref.Name)
		if !f.IsValid() || f.Kind() != reflect.Ptr {
			return errors.Errorf("type %s: field %s is not a message field", typeName, ref.Name)
		}
		if err := s.walk(f, ref.Type, seen, onBytes, onMessage); err != nil {
			return err
		}
	}
	for _, ref := range schema.RepeatedMessageFields {
		f := elem.FieldByName(ref.Name)
		switch {
		case f.Kind() == reflect.Slice:
			for i := 0; i < f.Len(); i++ {
				if err := s.walk(f.Index(i), ref.Type, seen, onBytes, onMessage); err != nil {
					return err
				}
			}
		case f.Kind() == reflect.Map:
			iter := f.MapRange()
			for iter.Next() {
				if err := s.walk(iter.Value(), ref.Type, seen, onBytes, onMessage); err != nil {
					return err
				}
			}
		default:
			return errors.Errorf("type %s: field %s is not a repeated message field", typeName, ref.Name)
		}
	}
	return nil
}

// mapBytes applies onBytes to each []byte value of a map field. Map values
// are not addressable, so changed buffers are stored back by key.
func mapBytes(f reflect.Value, onBytes func(reflect.Value) error) error {
	iter := f.MapRange()
	type update struct {
		key reflect.Value
		val reflect.Value
	}
	var updates []update
	for iter.Next() {
		tmp := reflect.New(f.Type().Elem()).Elem()
		tmp.Set(iter.Value())
		if err := onBytes(tmp); err != nil {
			return err
		}
		if tmp.Pointer() != iter.Value().Pointer() {
			updates = append(updates, update{key: iter.Key(), val: tmp})
		}
	}
	for _, u := range updates {
		f.SetMapIndex(u.key, u.val)
	}
	return nil
}

// attach installs the float32 view declared by the schema of one message.
func (s SchemaSet) attach(elem reflect.Value, schema Message) error {
	spec := schema.View
	if spec == nil {
		return nil
	}
	buf, err := byteField(elem, elem.Type().Name(), spec.Buffer)
	if err != nil {
		return err
	}
	b := buf.Bytes()
	if !Aligned(b) {
		b = Realign(b)
		buf.SetBytes(b)
	}

	count := elem.FieldByName(spec.Count)
	if !count.IsValid() {
		return errors.Errorf("type %s has no count field %s", elem.Type().Name(), spec.Count)
	}
	var n int
	switch count.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = int(count.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = int(count.Uint())
	default:
		return errors.Errorf("type %s: count field %s is not an integer", elem.Type().Name(), spec.Count)
	}

	view := elem.FieldByName(spec.View)
	if !view.IsValid() || view.Type() != reflect.TypeOf([]float32(nil)) {
		return errors.Errorf("type %s has no []float32 view field %s", elem.Type().Name(), spec.View)
	}
	if len(b) == 0 || n <= 0 {
		view.Set(reflect.Zero(view.Type()))
		return nil
	}
	if len(b)/alignment < n {
		return errors.Errorf("type %s: field %s holds %d float32s but %s declares %d",
			elem.Type().Name(), spec.Buffer, len(b)/alignment, spec.Count, n)
	}
	view.Set(reflect.ValueOf(Float32View(b, n)))
	return nil
}

func byteField(elem reflect.Value, typeName, name string) (reflect.Value, error) {
	f := elem.FieldByName(name)
	if !f.IsValid() || f.Kind() != reflect.Slice || f.Type().Elem().Kind() != reflect.Uint8 {
		return reflect.Value{}, errors.Errorf("type %s has no byte field %s", typeName, name)
	}
	return f, nil
}
