package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CreditKind tags the payload shape a [Credit] was decoded from.
type CreditKind int

const (
	// CreditAbsent is a null or empty field.
	CreditAbsent CreditKind = iota
	// CreditPlainName is a bare string, possibly "id;name" or "…;id;name" encoded.
	CreditPlainName
	// CreditIDName is a single [id, name] pair.
	CreditIDName
	// CreditNested is a list of people, from [[id, name], ...] (optionally wrapped
	// in one more array) or a list of plain names.
	CreditNested
)

func (k CreditKind) String() string {
	switch k {
	case CreditPlainName:
		return "plain"
	case CreditIDName:
		return "id-name"
	case CreditNested:
		return "nested"
	default:
		return "absent"
	}
}

// Person is a credited name with an optional catalog identifier (0 when unknown).
type Person struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Credit is a director or cast field.
type Credit struct {
	Kind   CreditKind
	People []Person
}

// UnmarshalJSON decodes the known shapes explicitly and rejects anything else.
func (c *Credit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*c = Credit{}
		return nil
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("credit: %w", err)
	}

	decoded, err := decodeCredit(raw)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// MarshalJSON emits the normalised form: null, a name, an [id, name] pair or a list of pairs.
func (c Credit) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CreditPlainName:
		return json.Marshal(c.Lead())
	case CreditIDName:
		p := c.People[0]
		return json.Marshal([]any{p.ID, p.Name})
	case CreditNested:
		pairs := make([][]any, 0, len(c.People))
		for _, p := range c.People {
			pairs = append(pairs, []any{p.ID, p.Name})
		}
		return json.Marshal(pairs)
	default:
		return jsonNull, nil
	}
}

func decodeCredit(raw any) (Credit, error) {
	switch v := raw.(type) {
	case string:
		name := splitEncodedName(v)
		if name == "" {
			return Credit{}, nil
		}
		return Credit{Kind: CreditPlainName, People: []Person{{Name: name}}}, nil
	case []any:
		return decodeCreditList(v)
	default:
		return Credit{}, fmt.Errorf("credit: unsupported shape %T", raw)
	}
}

func decodeCreditList(items []any) (Credit, error) {
	if len(items) == 0 {
		return Credit{}, nil
	}

	if p, ok := asPair(items); ok {
		return Credit{Kind: CreditIDName, People: []Person{p}}, nil
	}

	// [[[id, name], ...]] unwraps to [[id, name], ...]
	if len(items) == 1 {
		if inner, ok := items[0].([]any); ok && len(inner) > 0 {
			if _, nested := inner[0].([]any); nested {
				return decodeCreditList(inner)
			}
		}
	}

	if s, ok := items[0].(string); ok && len(items) == 1 {
		return decodeCredit(s)
	}

	people := make([]Person, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case []any:
			p, ok := asPair(v)
			if !ok {
				return Credit{}, fmt.Errorf("credit: entry %d is not an [id, name] pair", i)
			}
			people = append(people, p)
		case string:
			if name := splitEncodedName(v); name != "" {
				people = append(people, Person{Name: name})
			}
		default:
			return Credit{}, fmt.Errorf("credit: entry %d has unsupported shape %T", i, item)
		}
	}
	if len(people) == 0 {
		return Credit{}, nil
	}
	return Credit{Kind: CreditNested, People: people}, nil
}

// asPair matches [id, name] where id is a number or a digit string.
func asPair(items []any) (Person, bool) {
	if len(items) != 2 {
		return Person{}, false
	}
	name, ok := items[1].(string)
	if !ok {
		return Person{}, false
	}

	var id int64
	switch v := items[0].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Person{}, false
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return Person{}, false
		}
		id = n
	case nil:
	default:
		return Person{}, false
	}
	return Person{ID: id, Name: strings.TrimSpace(name)}, true
}

// splitEncodedName returns the last ";" separated part of s.
func splitEncodedName(s string) string {
	if i := strings.LastIndex(s, ";"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// Present reports whether the credit names anybody.
func (c Credit) Present() bool { return c.Kind != CreditAbsent && len(c.People) > 0 }

// Lead returns the first credited name.
func (c Credit) Lead() string {
	if !c.Present() {
		return ""
	}
	return c.People[0].Name
}

// Names returns up to limit names (all when limit <= 0).
func (c Credit) Names(limit int) []string {
	names := make([]string, 0, len(c.People))
	for _, p := range c.People {
		if limit > 0 && len(names) == limit {
			break
		}
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// String renders the credit for display.
func (c Credit) String() string {
	return strings.Join(c.Names(0), ", ")
}
