package common

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// ProcessTemplate renders text as a Go template with the sprig function map.
// Text without template actions is returned unchanged.
//
// Parameters:
//   - text: The template to process
//   - data: The value exposed as "." to the template
//
// Returns:
//   - The rendered string
//   - An error if parsing or execution fails
func ProcessTemplate(text string, data interface{}) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("value").
		Option("missingkey=zero").
		Funcs(sprig.TxtFuncMap()).
		Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	// fix https://github.com/golang/go/issues/24963
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}

// ProcessTemplateList renders every entry of list with ProcessTemplate.
func ProcessTemplateList(list []string, data interface{}) ([]string, error) {
	res := make([]string, 0, len(list))
	for _, item := range list {
		processedItem, err := ProcessTemplate(item, data)
		if err != nil {
			return nil, err
		}
		res = append(res, processedItem)
	}
	return res, nil
}
