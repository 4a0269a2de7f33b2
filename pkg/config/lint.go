package config

import (
	"regexp"

	"github.com/pingcap/tidb/pkg/parser"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"go.uber.org/zap"

	"github.com/sqlbridge/sqlbridge/pkg/logging"
)

// Substitution tokens inside templates ({id}, {name}, ...) are not valid SQL;
// mask them with a bind marker before parsing.
var templateToken = regexp.MustCompile(`\{[A-Za-z0-9_]+\}`)

// lintTemplates parses every loaded template and logs the ones the parser
// rejects. Advisory only: templates targeting a non-MySQL dialect may use
// syntax the parser does not know, so a lint failure never aborts the load.
func (r *Registry) lintTemplates(log *logging.Logger) {
	p := parser.New()
	for cat, section := range r.templates {
		for name, text := range section {
			masked := templateToken.ReplaceAllString(text, "?")
			if _, _, err := p.Parse(masked, "", ""); err != nil {
				log.Warn("template failed syntax lint",
					zap.String("section", string(cat)),
					zap.String("name", name),
					zap.Error(err))
			}
		}
	}
}
