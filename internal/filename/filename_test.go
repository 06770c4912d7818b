package filename

import (
	"strings"
	"testing"
)

func TestProjectSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation stripped", "Aula Verde 2024!!", "Aula_Verde_2024"},
		{"accents folded", "Educación Básica", "Educacion_Basica"},
		{"whitespace collapsed", "  Aula   Verde  ", "Aula_Verde"},
		{"enye preserved", "Niños del Sol", "Niños_del_Sol"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProjectSlug(tc.in); got != tc.want {
				t.Fatalf("ProjectSlug(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestProjectSlugTruncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	if got := ProjectSlug(long); len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
}

func TestProjectSlugIdempotent(t *testing.T) {
	inputs := []string{
		"Aula Verde 2024!!",
		"Educación  Básica / Inicial",
		"proyecto_sin_cambios",
		"Ñandú  ñoño",
		strings.Repeat("Título largo ", 10),
	}
	for _, in := range inputs {
		once := ProjectSlug(in)
		if twice := ProjectSlug(once); twice != once {
			t.Fatalf("slug not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestSessionJSONName(t *testing.T) {
	descriptor := map[string]any{"projectName": "Aula Verde 2024!!"}

	name, confirm := SessionJSONName("mi_sesion", descriptor)
	if name != "sesion_mi_sesion.json" || confirm {
		t.Fatalf("explicit name: got %q confirm=%v", name, confirm)
	}

	name, confirm = SessionJSONName("", descriptor)
	if name != "sesion_Aula_Verde_2024.json" || confirm {
		t.Fatalf("derived name: got %q confirm=%v", name, confirm)
	}

	name, confirm = SessionJSONName("", nil)
	if name != FallbackSessionJSON || !confirm {
		t.Fatalf("fallback name: got %q confirm=%v, want %q with confirmation", name, confirm, FallbackSessionJSON)
	}
}

func TestDocumentName(t *testing.T) {
	descriptor := map[string]any{"projectName": "Aula Verde 2024!!"}
	name, missing := DocumentName(descriptor, "2024-06-10")
	if len(missing) != 0 {
		t.Fatalf("unexpected missing prerequisites: %v", missing)
	}
	want := "sesion Aula Verde 2024 Del 10 al 14 de Junio.docx"
	if name != want {
		t.Fatalf("name = %q, want %q", name, want)
	}
}

func TestDocumentNameMissingPrerequisites(t *testing.T) {
	cases := []struct {
		name       string
		descriptor map[string]any
		date       string
		want       []string
	}{
		{"no session", nil, "2024-06-10", []string{MissingSession}},
		{"no project name", map[string]any{"otra": 1}, "2024-06-10", []string{MissingProjectName}},
		{"no date", map[string]any{"projectName": "Aula"}, "", []string{MissingStartDate}},
		{"nothing", nil, "", []string{MissingSession, MissingStartDate}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			name, missing := DocumentName(tc.descriptor, tc.date)
			if name != "" {
				t.Fatalf("expected unavailable name, got %q", name)
			}
			if len(missing) != len(tc.want) {
				t.Fatalf("missing = %v, want %v", missing, tc.want)
			}
			for i := range missing {
				if missing[i] != tc.want[i] {
					t.Fatalf("missing = %v, want %v", missing, tc.want)
				}
			}
		})
	}
}
