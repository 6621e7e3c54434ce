package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// docSchema lists the keys a stored document may carry. Keys tagged
// omitempty are optional, every other key is required.
type docSchema struct {
	allowed  map[string]bool
	required []string
}

func schemaOf(doc any) docSchema {
	t := reflect.TypeOf(doc)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s := docSchema{allowed: make(map[string]bool, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("bson")
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		s.allowed[name] = true
		if !strings.Contains(opts, "omitempty") {
			s.required = append(s.required, name)
		}
	}
	return s
}

// strictDecode rejects documents with unknown or missing keys before
// unmarshalling them into out.
func strictDecode(raw bson.Raw, schema docSchema, out any) error {
	elems, err := raw.Elements()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	seen := make(map[string]bool, len(elems))
	for _, el := range elems {
		key := el.Key()
		if !schema.allowed[key] {
			return fmt.Errorf("%w: unexpected field %q", ErrMalformed, key)
		}
		seen[key] = true
	}
	for _, key := range schema.required {
		if !seen[key] {
			return fmt.Errorf("%w: missing field %q", ErrMalformed, key)
		}
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func mongoSort(orders []Order, allowed map[string]bool, fallback bson.D) (bson.D, error) {
	if len(orders) == 0 {
		return fallback, nil
	}
	sort := make(bson.D, 0, len(orders))
	for _, o := range orders {
		if !allowed[o.Field] {
			return nil, fmt.Errorf("cannot sort by %q", o.Field)
		}
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: o.Field, Value: dir})
	}
	return sort, nil
}
