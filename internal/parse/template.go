package parse

import (
	"regexp"
	"sort"

	"ftl-go/internal/model"
)

// templateCall matches {{ template "name" }} actions, with or without trim
// markers and a pipeline argument.
var templateCall = regexp.MustCompile(`\{\{-?\s*template\s+"([^"]+)"`)

// dependsDirective matches {{/* depends "name" */}} comments, for templates
// that look up other templates indirectly.
var dependsDirective = regexp.MustCompile(`\{\{-?\s*/\*\s*depends\s+"([^"]+)"\s*\*/\s*-?\}\}`)

// TemplateReferences returns the sorted, distinct names of the templates f
// invokes. Names defined inside f itself are not references.
func (Parser) TemplateReferences(f *model.InputFile) []string {
	if !f.Inline {
		return nil
	}
	defined := map[string]bool{}
	for _, m := range templateDefine.FindAllStringSubmatch(f.Contents, -1) {
		defined[m[1]] = true
	}

	seen := map[string]bool{}
	var refs []string
	for _, re := range []*regexp.Regexp{templateCall, dependsDirective} {
		for _, m := range re.FindAllStringSubmatch(f.Contents, -1) {
			name := m[1]
			if defined[name] || seen[name] {
				continue
			}
			seen[name] = true
			refs = append(refs, name)
		}
	}
	sort.Strings(refs)
	return refs
}

var templateDefine = regexp.MustCompile(`\{\{-?\s*(?:define|block)\s+"([^"]+)"`)
