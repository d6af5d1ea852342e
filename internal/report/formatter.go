package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rouffj/pdepend/internal/metrics"
)

// Output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatXML     = "xml"
	FormatCompact = "compact"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatJSON, FormatXML, FormatCompact}

// Formatter writes summaries.
type Formatter struct {
	options Options
}

// Options controls summary formatting
type Options struct {
	Format      string // "text", "json", "xml", "compact"
	ShowLines   bool   // Show file and line of each declaration
	ShowMetrics bool   // Show node metrics in the text tree
	Indent      string // Indentation string
}

// NewFormatter creates a new formatter
func NewFormatter(options Options) *Formatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	if options.Format == "" {
		options.Format = FormatText
	}
	return &Formatter{options: options}
}

// Write formats s to w.
func (f *Formatter) Write(w io.Writer, s *Summary) error {
	if s == nil {
		_, err := io.WriteString(w, "No analysis data available\n")
		return err
	}

	switch f.options.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", f.options.Indent)
		return enc.Encode(s)
	case FormatXML:
		return f.writeXML(w, s)
	case FormatCompact:
		_, err := io.WriteString(w, f.formatCompact(s)+"\n")
		return err
	case FormatText:
		_, err := io.WriteString(w, f.formatText(s))
		return err
	default:
		return fmt.Errorf("unknown report format %q (want one of %s)", f.options.Format, strings.Join(Formats, ", "))
	}
}

// formatText formats the summary as an ASCII tree
func (f *Formatter) formatText(s *Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", s.Generator))
	sb.WriteString(fmt.Sprintf("Files: %d, Namespaces: %d\n", s.Files, len(s.Namespaces)))
	if len(s.Metrics) > 0 {
		sb.WriteString("Project: " + formatValues(s.Metrics) + "\n")
	}
	sb.WriteString("\n")

	for _, ns := range s.Namespaces {
		f.writeLine(&sb, "", "→ ", ns.Name, "", 0, ns.Metrics)

		count := len(ns.Types) + len(ns.Functions)
		i := 0
		for _, t := range ns.Types {
			i++
			last := i == count
			f.writeLine(&sb, f.options.Indent, branch(last), t.Kind+" "+t.Name, t.File, t.Line, t.Metrics)

			childPrefix := f.options.Indent + "│ "
			if last {
				childPrefix = f.options.Indent + "  "
			}
			for j, m := range t.Methods {
				f.writeLine(&sb, childPrefix, branch(j == len(t.Methods)-1), m.Name+"()", m.File, m.Line, m.Metrics)
			}
		}
		for _, fn := range ns.Functions {
			i++
			f.writeLine(&sb, f.options.Indent, branch(i == count), "function "+fn.Name+"()", fn.File, fn.Line, fn.Metrics)
		}
	}

	if len(s.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("\nErrors (%d):\n", len(s.Errors)))
		for _, e := range s.Errors {
			sb.WriteString(f.options.Indent + e + "\n")
		}
	}
	return sb.String()
}

func branch(last bool) string {
	if last {
		return "└─→ "
	}
	return "├─→ "
}

func (f *Formatter) writeLine(sb *strings.Builder, prefix, br, name, file string, line int, values metrics.Values) {
	sb.WriteString(prefix)
	sb.WriteString(br)
	sb.WriteString(name)
	if f.options.ShowLines && file != "" {
		if line > 0 {
			sb.WriteString(fmt.Sprintf(" [%s:%d]", file, line))
		} else {
			sb.WriteString(fmt.Sprintf(" [%s]", file))
		}
	}
	if f.options.ShowMetrics && len(values) > 0 {
		sb.WriteString(" (" + formatValues(values) + ")")
	}
	sb.WriteString("\n")
}

func formatValues(v metrics.Values) string {
	parts := make([]string, 0, len(v))
	for _, k := range v.Keys() {
		parts = append(parts, k+"="+formatFloat(v[k]))
	}
	return strings.Join(parts, " ")
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// formatCompact formats the project metrics on one line
func (f *Formatter) formatCompact(s *Summary) string {
	parts := []string{fmt.Sprintf("files=%d", s.Files), fmt.Sprintf("namespaces=%d", len(s.Namespaces))}
	if len(s.Metrics) > 0 {
		parts = append(parts, formatValues(s.Metrics))
	}
	if len(s.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("errors=%d", len(s.Errors)))
	}
	return strings.Join(parts, " ")
}

// XML layout: metrics are attributes of the element they measure.
type xmlMetrics struct {
	XMLName   xml.Name     `xml:"metrics"`
	Generator string       `xml:"generator,attr"`
	Files     int          `xml:"files,attr"`
	Attrs     []xml.Attr   `xml:",any,attr"`
	Packages  []xmlPackage `xml:"package"`
	Errors    []string     `xml:"errors>error,omitempty"`
}

type xmlPackage struct {
	Name       string     `xml:"name,attr"`
	Attrs      []xml.Attr `xml:",any,attr"`
	Classes    []xmlType  `xml:"class"`
	Interfaces []xmlType  `xml:"interface"`
	Functions  []xmlNode  `xml:"function"`
}

type xmlType struct {
	Name    string     `xml:"name,attr"`
	File    string     `xml:"file,attr"`
	Line    int        `xml:"line,attr,omitempty"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Methods []xmlNode  `xml:"method"`
}

type xmlNode struct {
	Name  string     `xml:"name,attr"`
	File  string     `xml:"file,attr,omitempty"`
	Line  int        `xml:"line,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
}

func xmlAttrs(v metrics.Values) []xml.Attr {
	out := make([]xml.Attr, 0, len(v))
	for _, k := range v.Keys() {
		out = append(out, xml.Attr{Name: xml.Name{Local: k}, Value: formatFloat(v[k])})
	}
	return out
}

func (f *Formatter) writeXML(w io.Writer, s *Summary) error {
	doc := xmlMetrics{
		Generator: s.Generator,
		Files:     s.Files,
		Attrs:     xmlAttrs(s.Metrics),
		Errors:    s.Errors,
	}
	for _, ns := range s.Namespaces {
		pkg := xmlPackage{Name: ns.Name, Attrs: xmlAttrs(ns.Metrics)}
		for _, t := range ns.Types {
			xt := xmlType{Name: t.Name, File: t.File, Line: t.Line, Attrs: xmlAttrs(t.Metrics)}
			for _, m := range t.Methods {
				xt.Methods = append(xt.Methods, xmlNode{Name: m.Name, Line: m.Line, Attrs: xmlAttrs(m.Metrics)})
			}
			if t.Kind == "interface" {
				pkg.Interfaces = append(pkg.Interfaces, xt)
			} else {
				pkg.Classes = append(pkg.Classes, xt)
			}
		}
		for _, fn := range ns.Functions {
			pkg.Functions = append(pkg.Functions, xmlNode{Name: fn.Name, File: fn.File, Line: fn.Line, Attrs: xmlAttrs(fn.Metrics)})
		}
		doc.Packages = append(doc.Packages, pkg)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", f.options.Indent)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
