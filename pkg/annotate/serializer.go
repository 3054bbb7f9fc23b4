package annotate

import (
	"encoding/json"
)

// Serializer converts typed descriptor field values to and from their
// canonical annotation form. Canonical form is compact JSON, which keeps a
// stored empty string (`""`) and a stored empty list (`[]`) distinguishable
// from an absent key.
//
// The supported shapes are a closed set: scalar string, scalar integer and
// ordered string list. Serializer is stateless and the zero value is ready
// to use; it is safe for concurrent use.
type Serializer struct{}

// EncodeString encodes a scalar string value for the given key.
func (Serializer) EncodeString(key, value string) (string, error) {
	return encodeJSON(key, value)
}

// EncodeInt encodes a scalar integer value for the given key.
func (Serializer) EncodeInt(key string, value int) (string, error) {
	return encodeJSON(key, value)
}

// EncodeStringList encodes an ordered string list for the given key.
// Element order and exact element values are preserved, including the empty
// list.
func (Serializer) EncodeStringList(key string, value []string) (string, error) {
	return encodeJSON(key, value)
}

// DecodeString decodes a scalar string previously produced by EncodeString.
func (Serializer) DecodeString(key, raw string) (string, error) {
	var value string
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return "", &DecodeError{Key: key, Reason: err.Error()}
	}
	return value, nil
}

// DecodeInt decodes a scalar integer previously produced by EncodeInt.
func (Serializer) DecodeInt(key, raw string) (int, error) {
	var value int
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return 0, &DecodeError{Key: key, Reason: err.Error()}
	}
	return value, nil
}

// DecodeStringList decodes an ordered string list previously produced by
// EncodeStringList.
func (Serializer) DecodeStringList(key, raw string) ([]string, error) {
	var value []string
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, &DecodeError{Key: key, Reason: err.Error()}
	}
	if value == nil {
		value = []string{}
	}
	return value, nil
}

func encodeJSON(key string, value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", &EncodeError{Key: key, Err: err}
	}
	return string(raw), nil
}
