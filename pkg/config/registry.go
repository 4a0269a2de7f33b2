// Package config loads the externally defined SQL templates, provider
// settings, and table mappings into in-memory registries. Loading happens
// once; the resulting Registry is immutable and safe for concurrent reads.
package config

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sqlbridge/sqlbridge/pkg/database"
	"github.com/sqlbridge/sqlbridge/pkg/errcat"
	"github.com/sqlbridge/sqlbridge/pkg/logging"
	"github.com/sqlbridge/sqlbridge/pkg/settings"
)

// Category selects one of the four template sections.
type Category string

const (
	CategoryInsert Category = "insert"
	CategorySelect Category = "select"
	CategoryUpdate Category = "update"
	CategoryDelete Category = "delete"
)

const lastInsertIDName = "getlastinsertid"

// ProviderSettings carries the per-provider pieces the engine needs.
type ProviderSettings struct {
	StartFieldEncloser    string
	EndFieldEncloser      string
	LastInsertIDStatement string
}

// Registry is the populated configuration: four template maps, the mapping
// table, the active provider's settings, and the resolved connection string.
// All fields are written once during load and read-only afterwards.
type Registry struct {
	providerName string
	provider     ProviderSettings
	connString   string
	templates    map[Category]map[string]string
	mappings     map[string]map[string]string
}

var (
	instanceMu sync.Mutex
	instance   *Registry
)

// Instance returns the process-wide registry, loading it on first access.
// Concurrent first calls observe exactly one load; a failed load leaves the
// singleton unset so the next call retries. The load's detailed log goes to
// the file named by the DetailLogPath setting.
func Instance() (*Registry, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	s, err := settings.Load()
	if err != nil {
		logging.Default().Critical("application settings rejected", err)
		return nil, err
	}
	reg, err := New(s, logging.New(s.DetailLogPath))
	if err != nil {
		return nil, err
	}
	instance = reg
	return instance, nil
}

// Clear discards the singleton so the next Instance call reloads. Intended
// for reload and test isolation.
func Clear() {
	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
}

// New loads the registry from the given settings. Every failure is fatal to
// the load: it is logged (coarse + detailed) and returned, and no partially
// populated registry escapes.
func New(s *settings.Settings, log *logging.Logger) (*Registry, error) {
	if log == nil {
		log = logging.Default()
	}

	var tmplDoc templateDocument
	if err := loadDocument(s.TemplatePath(), &tmplDoc); err != nil {
		e := errcat.Wrap("SCHEMA_VALIDATION_FAILED", s.TemplatePath(), err)
		log.Critical("template document rejected", e, zap.String("path", s.TemplatePath()))
		return nil, e
	}

	var mapDoc mappingDocument
	if err := loadDocument(s.MappingPath(), &mapDoc); err != nil {
		e := errcat.Wrap("SCHEMA_VALIDATION_FAILED", s.MappingPath(), err)
		log.Critical("mapping document rejected", e, zap.String("path", s.MappingPath()))
		return nil, e
	}

	reg := &Registry{
		providerName: s.ActiveConnection,
		templates:    make(map[Category]map[string]string, 4),
		mappings:     make(map[string]map[string]string, len(mapDoc.Tables)),
	}

	if err := reg.loadProvider(&tmplDoc, s, log); err != nil {
		return nil, err
	}
	if err := reg.loadTemplates(&tmplDoc, log); err != nil {
		return nil, err
	}
	if err := reg.loadMappings(&mapDoc, log); err != nil {
		return nil, err
	}
	if err := reg.resolveConnString(s, log); err != nil {
		return nil, err
	}

	if s.LintTemplates {
		reg.lintTemplates(log)
	}

	log.Info("configuration registry loaded",
		zap.String("provider", reg.providerName),
		zap.Int("inserts", len(reg.templates[CategoryInsert])),
		zap.Int("selects", len(reg.templates[CategorySelect])),
		zap.Int("updates", len(reg.templates[CategoryUpdate])),
		zap.Int("deletes", len(reg.templates[CategoryDelete])),
		zap.Int("tables", len(reg.mappings)))

	return reg, nil
}

func (r *Registry) loadProvider(doc *templateDocument, s *settings.Settings, log *logging.Logger) error {
	var node *providerNode
	for i := range doc.ProviderSpecific.Providers {
		if strings.EqualFold(doc.ProviderSpecific.Providers[i].Name, s.ActiveConnection) {
			node = &doc.ProviderSpecific.Providers[i]
			break
		}
	}
	if node == nil {
		e := errcat.New("PROVIDER_NOT_FOUND", s.ActiveConnection)
		log.Critical("no provider node for active connection", e,
			zap.String("provider", s.ActiveConnection))
		return e
	}

	if node.FieldEncloser != "" {
		r.provider.StartFieldEncloser = node.FieldEncloser
		r.provider.EndFieldEncloser = node.FieldEncloser
	} else {
		r.provider.StartFieldEncloser = node.StartFieldEncloser
		r.provider.EndFieldEncloser = node.EndFieldEncloser
	}

	for _, sel := range node.Selects {
		if strings.EqualFold(sel.Name, lastInsertIDName) {
			r.provider.LastInsertIDStatement = strings.TrimSpace(sel.Text)
			break
		}
	}
	if r.provider.LastInsertIDStatement == "" {
		log.Warn("provider declares no last-insert-id statement; inserts will not report ids",
			zap.String("provider", s.ActiveConnection))
	}

	return nil
}

func (r *Registry) loadTemplates(doc *templateDocument, log *logging.Logger) error {
	sections := []struct {
		cat     Category
		section templateSection
	}{
		{CategoryInsert, doc.Inserts},
		{CategorySelect, doc.Selects},
		{CategoryUpdate, doc.Updates},
		{CategoryDelete, doc.Deletes},
	}

	for _, sec := range sections {
		m := make(map[string]string, len(sec.section.Statements))
		for _, stmt := range sec.section.Statements {
			// lookup is case-insensitive, so names differing only in
			// case collide here
			key := strings.ToLower(stmt.Name)
			if _, dup := m[key]; dup {
				e := errcat.New("DUPLICATE_TEMPLATE_NAME",
					fmt.Sprintf("%q in section %s", stmt.Name, sec.cat))
				log.Critical("duplicate template name", e,
					zap.String("name", stmt.Name),
					zap.String("section", string(sec.cat)))
				return e
			}
			m[key] = strings.TrimSpace(stmt.Text)
		}
		r.templates[sec.cat] = m
	}
	return nil
}

func (r *Registry) loadMappings(doc *mappingDocument, log *logging.Logger) error {
	for _, table := range doc.Tables {
		key := strings.ToLower(table.Name)
		inner := make(map[string]string, len(table.Fields))
		for _, f := range table.Fields {
			if _, dup := inner[f.Property]; dup {
				e := errcat.New("SCHEMA_VALIDATION_FAILED",
					fmt.Sprintf("table %q maps property %q twice", table.Name, f.Property))
				log.Critical("duplicate property mapping", e,
					zap.String("table", table.Name),
					zap.String("property", f.Property))
				return e
			}
			inner[f.Property] = f.Column
		}
		r.mappings[key] = inner
	}
	return nil
}

func (r *Registry) resolveConnString(s *settings.Settings, log *logging.Logger) error {
	provider, ok := database.Lookup(s.ActiveConnection)
	if !ok {
		e := errcat.New("PROVIDER_NOT_FOUND",
			fmt.Sprintf("%s has no registered driver", s.ActiveConnection))
		log.Critical("active connection has no provider factory entry", e,
			zap.String("provider", s.ActiveConnection))
		return e
	}
	r.connString = SubstituteTokens(provider.ConnStringTemplate, s)
	return nil
}

// Template returns the raw SQL text registered under name in the given
// category. Names are matched case-insensitively.
func (r *Registry) Template(cat Category, name string) (string, error) {
	section, ok := r.templates[cat]
	if !ok {
		return "", errcat.New("TEMPLATE_NOT_FOUND", fmt.Sprintf("unknown category %q", cat))
	}
	text, ok := section[strings.ToLower(name)]
	if !ok {
		return "", errcat.New("TEMPLATE_NOT_FOUND",
			fmt.Sprintf("%q in section %s", name, cat))
	}
	return text, nil
}

// TemplateNames lists the registered operation names of one category.
func (r *Registry) TemplateNames(cat Category) []string {
	names := make([]string, 0, len(r.templates[cat]))
	for name := range r.templates[cat] {
		names = append(names, name)
	}
	return names
}

// Mapping returns the property-to-column map for a table key (any case).
func (r *Registry) Mapping(tableKey string) (map[string]string, bool) {
	m, ok := r.mappings[strings.ToLower(tableKey)]
	return m, ok
}

// HasTable reports whether tableKey exists in the mapping registry.
func (r *Registry) HasTable(tableKey string) bool {
	_, ok := r.mappings[strings.ToLower(tableKey)]
	return ok
}

// TableKeys lists all registered table keys (already lower-cased).
func (r *Registry) TableKeys() []string {
	keys := make([]string, 0, len(r.mappings))
	for k := range r.mappings {
		keys = append(keys, k)
	}
	return keys
}

// Provider returns the active provider's settings.
func (r *Registry) Provider() ProviderSettings {
	return r.provider
}

// ProviderName returns the active connection's provider name.
func (r *Registry) ProviderName() string {
	return r.providerName
}

// ConnString returns the resolved connection string.
func (r *Registry) ConnString() string {
	return r.connString
}

// EncloseField wraps a field name in the provider's enclosers.
func (r *Registry) EncloseField(name string) string {
	return r.provider.StartFieldEncloser + name + r.provider.EndFieldEncloser
}
