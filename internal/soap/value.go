// Package soap encodes Debbugs SOAP requests and decodes replies into a
// tree of named, typed values.
package soap

import (
	"encoding/xml"
	"strings"
)

const (
	NamespaceEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceEncoding = "http://schemas.xmlsoap.org/soap/encoding/"
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceXSD      = "http://www.w3.org/2001/XMLSchema"
	NamespaceApache   = "http://xml.apache.org/xml-soap"
)

// Type names as they appear (without prefix) in xsi:type attributes.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBase64 = "base64Binary"
	TypeArray  = "Array"
	TypeMap    = "Map"
)

// Value is one node of a decoded reply. Children keep document order.
type Value struct {
	Name     string
	Type     string
	Text     string
	Children []Value
}

// Child returns the first direct child named name.
func (v *Value) Child(name string) *Value {
	if v == nil {
		return nil
	}
	for i := range v.Children {
		if v.Children[i].Name == name {
			return &v.Children[i]
		}
	}
	return nil
}

// Index returns the i-th child or nil.
func (v *Value) Index(i int) *Value {
	if v == nil || i < 0 || i >= len(v.Children) {
		return nil
	}
	return &v.Children[i]
}

func (v *Value) HasChildren() bool {
	return v != nil && len(v.Children) > 0
}

func (v *Value) IsArray() bool {
	return v != nil && v.Type == TypeArray
}

func (v *Value) IsMap() bool {
	return v != nil && v.Type == TypeMap
}

func (v *Value) IsBase64() bool {
	return v != nil && v.Type == TypeBase64
}

// node mirrors any XML element for encoding/xml's catch-all decoding.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n node) attr(space string, local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value, true
		}
	}
	return "", false
}

func (n node) toValue() Value {
	value := Value{Name: n.XMLName.Local}
	if typ, ok := n.attr(NamespaceXSI, "type"); ok {
		value.Type = localName(typ)
	} else if typ, ok := n.attr("xsi", "type"); ok {
		// undeclared prefix
		value.Type = localName(typ)
	}
	if len(n.Children) == 0 {
		value.Text = n.Text
		return value
	}
	value.Text = strings.TrimSpace(n.Text)
	value.Children = make([]Value, 0, len(n.Children))
	for _, child := range n.Children {
		value.Children = append(value.Children, child.toValue())
	}
	return value
}

func localName(qualified string) string {
	if idx := strings.LastIndex(qualified, ":"); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}
