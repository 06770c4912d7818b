// Package roster models the class roster as the generation and
// edit_class collaborators consume it.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Entry is one student row. Order is display order only.
type Entry struct {
	Name         string `json:"nombre" validate:"required"`
	BirthDate    string `json:"fechaNacimiento"`
	SpecialNeeds string `json:"necesidadesEspeciales"`
	Notes        string `json:"notas"`
}

// Document is the roster wire shape: {"alumnos": [...]}.
type Document struct {
	Students []Entry `json:"alumnos" validate:"required,dive"`
}

// Parse decodes roster JSON into its structured form.
func Parse(text string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate checks the structural requirements: the alumnos array must
// be present and every entry needs a name.
func (d Document) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	if err := v.Struct(d); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return fmt.Errorf("roster: campo %s requerido", invalid[0].Field())
		}
		return fmt.Errorf("roster: %w", err)
	}
	return nil
}
