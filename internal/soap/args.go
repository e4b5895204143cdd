package soap

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Field is one ordered key/value member of a Struct argument.
type Field struct {
	Key   string
	Value any
}

// Struct is an argument serialised as ordered child elements.
type Struct []Field

// encodeValue writes one argument element. Supported values: int,
// int64, string, bool, []int, []string, []any, Struct.
func encodeValue(enc *xml.Encoder, name string, value any) error {
	switch v := value.(type) {
	case int:
		return encodeScalar(enc, name, "xsd:int", strconv.Itoa(v))
	case int64:
		return encodeScalar(enc, name, "xsd:int", strconv.FormatInt(v, 10))
	case bool:
		text := "0"
		if v {
			text = "1"
		}
		return encodeScalar(enc, name, "xsd:int", text)
	case string:
		return encodeScalar(enc, name, "xsd:string", v)
	case []int:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return encodeArray(enc, name, "xsd:int", items)
	case []string:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return encodeArray(enc, name, "xsd:string", items)
	case []any:
		return encodeArray(enc, name, "xsd:anyType", v)
	case Struct:
		start := xml.StartElement{Name: xml.Name{Local: name}}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, field := range v {
			if err := encodeValue(enc, field.Key, field.Value); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported argument type %T for %s", value, name))
	}
}

func encodeScalar(enc *xml.Encoder, name string, typ string, text string) error {
	start := xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xsi:type"}, Value: typ}},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func encodeArray(enc *xml.Encoder, name string, itemType string, items []any) error {
	start := xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xsi:type"}, Value: "soapenc:Array"},
			{Name: xml.Name{Local: "soapenc:arrayType"}, Value: fmt.Sprintf("%s[%d]", itemType, len(items))},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, item := range items {
		if err := encodeValue(enc, "item", item); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
