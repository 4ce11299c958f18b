package variables

import (
	"encoding/xml"
	"strings"
)

func xmlAttrEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// GenerateAntProperties renders a fragment of <property/> elements for
// inclusion in a generated Ant build file.
func GenerateAntProperties(root *OrderedMap) string {
	f := &FlattenedEmitter{Sep: ".", KeysSuffix: ".KEYS"}
	Generate(root, f)

	var b strings.Builder
	for _, e := range f.Entries {
		b.WriteString(`<property name="`)
		b.WriteString(xmlAttrEscape(e.Path))
		b.WriteString(`" value="`)
		b.WriteString(xmlAttrEscape(e.Value))
		b.WriteString(`"/>` + "\n")
	}
	return b.String()
}

// quoteNAntValue blocks NAnt's own ${...} property evaluation by
// rewriting every "$" to "${'$'}". It is applied after XML-attribute
// escaping, so the single quotes stay literal inside the double-quoted
// attribute.
func quoteNAntValue(s string) string {
	return strings.ReplaceAll(s, "$", "${'$'}")
}

// GenerateNAntProperties renders a fragment of <property/> elements for
// inclusion in a generated NAnt build file.
func GenerateNAntProperties(root *OrderedMap) string {
	f := &FlattenedEmitter{Sep: ".", KeysSuffix: ".KEYS"}
	Generate(root, f)

	var b strings.Builder
	for _, e := range f.Entries {
		b.WriteString(`<property name="`)
		b.WriteString(xmlAttrEscape(e.Path))
		b.WriteString(`" value="`)
		b.WriteString(quoteNAntValue(xmlAttrEscape(e.Value)))
		b.WriteString(`"/>` + "\n")
	}
	return b.String()
}
