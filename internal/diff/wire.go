package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Wire format.
//
// Each update is a JSON object with exactly one recognized key, the variant's
// Kind, whose value is the payload:
//
//	{"Clear": {}}                      {"PopFront": {}}      {"PopBack": {}}
//	{"Append": {"values": [...]}}      {"Reset": {"values": [...]}}
//	{"PushFront": {"value": v}}        {"PushBack": {"value": v}}
//	{"Insert": {"index": 2, "value": v}}
//	{"Set": {"index": 0, "value": v}}  {"Remove": {"index": 0}}
//	{"Truncate": {"length": 3}}
//
// Keys that are not variant names are ignored. A record with zero or several
// recognized keys decodes to an UNRECOGNIZED_UPDATE *Error.

// Decoder decodes one element from its raw JSON.
type Decoder[T any] func(raw json.RawMessage) (T, error)

// DecodeJSON is the default Decoder, using encoding/json.
func DecodeJSON[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

type valueBody[T any] struct {
	Value T `json:"value"`
}

type valuesBody[T any] struct {
	Values []T `json:"values"`
}

type indexValueBody[T any] struct {
	Index int `json:"index"`
	Value T   `json:"value"`
}

type indexBody struct {
	Index int `json:"index"`
}

type lengthBody struct {
	Length int `json:"length"`
}

// rawBody is the union of all payload fields, kept raw until the variant is known.
type rawBody struct {
	Value  json.RawMessage   `json:"value"`
	Values []json.RawMessage `json:"values"`
	Index  *int              `json:"index"`
	Length *int              `json:"length"`
}

// EncodeUpdate marshals u to its wire form.
func EncodeUpdate[T any](u Update[T]) ([]byte, error) {
	var body any
	switch op := u.(type) {
	case Clear[T], PopFront[T], PopBack[T]:
		body = struct{}{}
	case Append[T]:
		body = valuesBody[T]{Values: nonNil(op.Values)}
	case Reset[T]:
		body = valuesBody[T]{Values: nonNil(op.Values)}
	case PushFront[T]:
		body = valueBody[T]{Value: op.Value}
	case PushBack[T]:
		body = valueBody[T]{Value: op.Value}
	case Insert[T]:
		body = indexValueBody[T]{Index: op.Index, Value: op.Value}
	case Set[T]:
		body = indexValueBody[T]{Index: op.Index, Value: op.Value}
	case Remove[T]:
		body = indexBody{Index: op.Index}
	case Truncate[T]:
		body = lengthBody{Length: op.Length}
	default:
		return nil, NewUnrecognizedError(u)
	}

	data, err := json.Marshal(map[string]any{string(u.Kind()): body})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", u.Kind(), err)
	}
	return data, nil
}

// EncodeBatch marshals updates to a JSON array of wire records.
func EncodeBatch[T any](updates []Update[T]) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, u := range updates {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := EncodeUpdate(u)
		if err != nil {
			return nil, atPosition(err, i)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// DecodeUpdate parses one wire record, decoding carried elements with decode.
func DecodeUpdate[T any](data []byte, decode Decoder[T]) (Update[T], error) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		var probe any
		if json.Unmarshal(data, &probe) == nil {
			// Well-formed JSON that is not an object carries no tag at all.
			return nil, &Error{
				Code:     ErrCodeUnrecognizedUpdate,
				Message:  fmt.Sprintf("update record must be an object, got %T", probe),
				Position: -1,
			}
		}
		return nil, fmt.Errorf("decode update: %w", err)
	}

	var tags []string
	for _, k := range kinds {
		if _, ok := record[string(k)]; ok {
			tags = append(tags, string(k))
		}
	}
	if len(tags) != 1 {
		return nil, &Error{
			Code:     ErrCodeUnrecognizedUpdate,
			Message:  fmt.Sprintf("update record has %d recognized tags [%s], want exactly 1", len(tags), strings.Join(tags, ", ")),
			Position: -1,
		}
	}

	kind := Kind(tags[0])
	var body rawBody
	if payload := record[tags[0]]; len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
	}

	switch kind {
	case KindClear:
		return Clear[T]{}, nil
	case KindPopFront:
		return PopFront[T]{}, nil
	case KindPopBack:
		return PopBack[T]{}, nil

	case KindAppend, KindReset:
		if body.Values == nil {
			return nil, missingField(kind, "values")
		}
		values, err := decodeValues(kind, body.Values, decode)
		if err != nil {
			return nil, err
		}
		if kind == KindAppend {
			return Append[T]{Values: values}, nil
		}
		return Reset[T]{Values: values}, nil

	case KindPushFront, KindPushBack:
		v, err := decodeValue(kind, body.Value, decode)
		if err != nil {
			return nil, err
		}
		if kind == KindPushFront {
			return PushFront[T]{Value: v}, nil
		}
		return PushBack[T]{Value: v}, nil

	case KindInsert, KindSet:
		if body.Index == nil {
			return nil, missingField(kind, "index")
		}
		v, err := decodeValue(kind, body.Value, decode)
		if err != nil {
			return nil, err
		}
		if kind == KindInsert {
			return Insert[T]{Index: *body.Index, Value: v}, nil
		}
		return Set[T]{Index: *body.Index, Value: v}, nil

	case KindRemove:
		if body.Index == nil {
			return nil, missingField(kind, "index")
		}
		return Remove[T]{Index: *body.Index}, nil

	case KindTruncate:
		if body.Length == nil {
			return nil, missingField(kind, "length")
		}
		return Truncate[T]{Length: *body.Length}, nil

	default:
		return nil, NewUnrecognizedError(kind)
	}
}

// DecodeBatch parses a JSON array of wire records.
// The first failing record aborts decoding; *Error results carry its position.
func DecodeBatch[T any](data []byte, decode Decoder[T]) ([]Update[T], error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	updates := make([]Update[T], 0, len(records))
	for i, rec := range records {
		u, err := DecodeUpdate(rec, decode)
		if err != nil {
			return nil, atPosition(err, i)
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func decodeValue[T any](kind Kind, raw json.RawMessage, decode Decoder[T]) (T, error) {
	if raw == nil {
		var zero T
		return zero, missingField(kind, "value")
	}
	v, err := decode(raw)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s value: %w", kind, err)
	}
	return v, nil
}

func decodeValues[T any](kind Kind, raws []json.RawMessage, decode Decoder[T]) ([]T, error) {
	values := make([]T, len(raws))
	for i, raw := range raws {
		v, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s values[%d]: %w", kind, i, err)
		}
		values[i] = v
	}
	return values, nil
}

func missingField(kind Kind, field string) error {
	return fmt.Errorf("decode %s: missing %q", kind, field)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
