package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a deterministic JSON encoding of a predicate tree.
//
// The encoding is the identity used for structural equality (feature
// conjunction de-duplication). Differences from json.Marshal:
//  1. Object keys are always emitted in sorted order
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. FeatureConjunction operands are sorted by their own encoding
//  5. Range partitions are derived data and are not encoded
func MarshalCanonical(p Predicate) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalKey returns MarshalCanonical(p) as a string, for map keys.
func CanonicalKey(p Predicate) (string, error) {
	b, err := MarshalCanonical(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Predicate) bool {
	ka, errA := CanonicalKey(a)
	kb, errB := CanonicalKey(b)
	return errA == nil && errB == nil && ka == kb
}

func marshalCanonical(buf *bytes.Buffer, p Predicate) error {
	switch n := p.(type) {
	case nil:
		return fmt.Errorf("nil predicate is not encodable")
	case *Conjunction:
		return marshalOperator(buf, "and", n.Children)
	case *Disjunction:
		return marshalOperator(buf, "or", n.Children)
	case *Negation:
		buf.WriteString(`{"not":`)
		if err := marshalCanonical(buf, n.Operand); err != nil {
			return fmt.Errorf("not: %w", err)
		}
		buf.WriteByte('}')
		return nil
	case *FeatureSet:
		buf.WriteString(`{"feature":{"in":[`)
		for i, v := range n.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, v)
		}
		buf.WriteString(`],"key":`)
		writeCanonicalString(buf, n.Key)
		buf.WriteString(`}}`)
		return nil
	case *FeatureRange:
		buf.WriteString(`{"range":{`)
		if n.From != nil {
			buf.WriteString(`"from":`)
			buf.WriteString(strconv.FormatInt(*n.From, 10))
			buf.WriteByte(',')
		}
		buf.WriteString(`"key":`)
		writeCanonicalString(buf, n.Key)
		if n.To != nil {
			buf.WriteString(`,"to":`)
			buf.WriteString(strconv.FormatInt(*n.To, 10))
		}
		buf.WriteString(`}}`)
		return nil
	case *FeatureConjunction:
		encoded := make([]string, len(n.Operands))
		for i, op := range n.Operands {
			b, err := MarshalCanonical(op)
			if err != nil {
				return fmt.Errorf("conjunction[%d]: %w", i, err)
			}
			encoded[i] = string(b)
		}
		slices.Sort(encoded)
		buf.WriteString(`{"conjunction":[`)
		for i, e := range encoded {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(e)
		}
		buf.WriteString(`]}`)
		return nil
	case *BooleanPredicate:
		buf.WriteString(`{"bool":`)
		buf.WriteString(strconv.FormatBool(n.Value))
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func marshalOperator(buf *bytes.Buffer, name string, children []Predicate) error {
	buf.WriteString(`{"` + name + `":[`)
	for i, c := range children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonical(buf, c); err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
	}
	buf.WriteString(`]}`)
	return nil
}

// writeCanonicalString writes an NFC normalized JSON string without HTML
// escaping. U+2028 and U+2029 are written literally.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))

	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters, leaving \\u2028 (an escaped
// backslash followed by text) untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+1 < len(data) {
			if data[i+1] == 'u' && i+5 < len(data) && string(data[i+2:i+5]) == "202" &&
				(data[i+5] == '8' || data[i+5] == '9') {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
			// Any other escape pair is copied whole so that \\ never
			// pairs with a following u2028.
			out = append(out, data[i], data[i+1])
			i++
			continue
		}
		out = append(out, data[i])
	}
	return out
}
