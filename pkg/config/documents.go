package config

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// XML document models for the two configuration files. Struct validation
// (validator/v10 tags) stands in for XSD: the same required-attribute and
// shape constraints, enforced after unmarshalling.

// templateDocument is the root of the template file.
type templateDocument struct {
	XMLName          xml.Name        `xml:"SqlTemplates"`
	Inserts          templateSection `xml:"Inserts"`
	Selects          templateSection `xml:"Selects"`
	Updates          templateSection `xml:"Updates"`
	Deletes          templateSection `xml:"Deletes"`
	ProviderSpecific providerSection `xml:"ProviderSpecific" validate:"required"`
}

type templateSection struct {
	Statements []statementNode `xml:",any" validate:"dive"`
}

type statementNode struct {
	Name string `xml:"name,attr" validate:"required"`
	Text string `xml:",chardata"`
}

type providerSection struct {
	Providers []providerNode `xml:"Provider" validate:"required,dive"`
}

type providerNode struct {
	Name               string          `xml:"name,attr" validate:"required"`
	FieldEncloser      string          `xml:"FieldEncloser,attr"`
	StartFieldEncloser string          `xml:"StartFieldEncloser,attr"`
	EndFieldEncloser   string          `xml:"EndFieldEncloser,attr"`
	Selects            []statementNode `xml:"Select" validate:"dive"`
}

// mappingDocument is the root of the mapping file.
type mappingDocument struct {
	XMLName xml.Name    `xml:"Mappings"`
	Tables  []tableNode `xml:"Table" validate:"dive"`
}

type tableNode struct {
	Name   string      `xml:"name,attr" validate:"required"`
	Fields []fieldNode `xml:"Field" validate:"required,dive"`
}

type fieldNode struct {
	Property string `xml:"property,attr" validate:"required"`
	Column   string `xml:"column,attr" validate:"required"`
}

var validate = validator.New()

// loadDocument unmarshals path into doc and applies the struct constraints.
func loadDocument(path string, doc any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := xml.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%s violates the document schema: %w", path, err)
	}
	return nil
}
