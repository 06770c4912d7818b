package roster

import (
	"strings"
	"testing"
)

func TestParseAndValidate(t *testing.T) {
	text := `{"alumnos": [
		{"nombre": "Lucía", "fechaNacimiento": "03/04/2021", "necesidadesEspeciales": "", "notas": "zurda"},
		{"nombre": "Mateo", "fechaNacimiento": "15/09/2020"}
	]}`
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Students) != 2 || doc.Students[0].Name != "Lucía" {
		t.Fatalf("students = %+v", doc.Students)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRequiresAlumnos(t *testing.T) {
	doc, err := Parse(`{"otra": []}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := doc.Validate(); err == nil {
		t.Fatal("expected error for missing alumnos")
	}
}

func TestValidateRequiresNames(t *testing.T) {
	doc, err := Parse(`{"alumnos": [{"nombre": ""}]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = doc.Validate()
	if err == nil {
		t.Fatal("expected error for empty nombre")
	}
	if !strings.Contains(err.Error(), "requerido") {
		t.Fatalf("err = %v, want campo requerido message", err)
	}
}

func TestParseRejectsBrokenJSON(t *testing.T) {
	if _, err := Parse(`{"alumnos": [`); err == nil {
		t.Fatal("expected syntax error")
	}
}
