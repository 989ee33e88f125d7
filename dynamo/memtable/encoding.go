package memtable

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Items are persisted as JSON in DynamoDB's wire shape: every attribute is a
// single-key object tagging its type, e.g. {"S":"hello"} or {"N":"42"}.

type wireAV map[string]json.RawMessage

func serializeItem(item map[string]types.AttributeValue) ([]byte, error) {
	out := make(map[string]wireAV, len(item))
	for k, v := range item {
		av, err := toWire(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = av
	}
	return json.Marshal(out)
}

func deserializeItem(data []byte) (map[string]types.AttributeValue, error) {
	var raw map[string]wireAV
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	out := make(map[string]types.AttributeValue, len(raw))
	for k, v := range raw {
		av, err := fromWire(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}

func toWire(av types.AttributeValue) (wireAV, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return wireField("S", v.Value)
	case *types.AttributeValueMemberN:
		return wireField("N", v.Value)
	case *types.AttributeValueMemberB:
		return wireField("B", v.Value)
	case *types.AttributeValueMemberBOOL:
		return wireField("BOOL", v.Value)
	case *types.AttributeValueMemberNULL:
		return wireField("NULL", v.Value)
	case *types.AttributeValueMemberSS:
		return wireField("SS", v.Value)
	case *types.AttributeValueMemberNS:
		return wireField("NS", v.Value)
	case *types.AttributeValueMemberL:
		elems := make([]wireAV, 0, len(v.Value))
		for _, e := range v.Value {
			we, err := toWire(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, we)
		}
		return wireField("L", elems)
	case *types.AttributeValueMemberM:
		m := make(map[string]wireAV, len(v.Value))
		for k, e := range v.Value {
			we, err := toWire(e)
			if err != nil {
				return nil, err
			}
			m[k] = we
		}
		return wireField("M", m)
	default:
		return nil, fmt.Errorf("unsupported attribute value type %T", av)
	}
}

func wireField(tag string, value any) (wireAV, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return wireAV{tag: raw}, nil
}

func fromWire(av wireAV) (types.AttributeValue, error) {
	for tag, raw := range av {
		switch tag {
		case "S":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberS{Value: s}, nil
		case "N":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberN{Value: s}, nil
		case "B":
			var b []byte
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberB{Value: b}, nil
		case "BOOL":
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberBOOL{Value: b}, nil
		case "NULL":
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberNULL{Value: b}, nil
		case "SS":
			var ss []string
			if err := json.Unmarshal(raw, &ss); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberSS{Value: ss}, nil
		case "NS":
			var ns []string
			if err := json.Unmarshal(raw, &ns); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberNS{Value: ns}, nil
		case "L":
			var elems []wireAV
			if err := json.Unmarshal(raw, &elems); err != nil {
				return nil, err
			}
			out := make([]types.AttributeValue, 0, len(elems))
			for _, e := range elems {
				av, err := fromWire(e)
				if err != nil {
					return nil, err
				}
				out = append(out, av)
			}
			return &types.AttributeValueMemberL{Value: out}, nil
		case "M":
			var m map[string]wireAV
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, err
			}
			out := make(map[string]types.AttributeValue, len(m))
			for k, e := range m {
				av, err := fromWire(e)
				if err != nil {
					return nil, err
				}
				out[k] = av
			}
			return &types.AttributeValueMemberM{Value: out}, nil
		default:
			return nil, fmt.Errorf("unsupported wire tag %q", tag)
		}
	}
	return nil, fmt.Errorf("empty wire attribute")
}
