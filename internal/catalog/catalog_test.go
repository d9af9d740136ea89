package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQuestionAtRange(t *testing.T) {
	if Len() != 18 {
		t.Fatalf("expected 18 questions, got %d", Len())
	}
	if _, ok := QuestionAt(0); ok {
		t.Fatal("step 0 should be out of range")
	}
	if _, ok := QuestionAt(19); ok {
		t.Fatal("step 19 should be out of range")
	}
	first, _ := QuestionAt(1)
	if first.FieldKey != "nomes" || !first.Required {
		t.Fatalf("unexpected first question %+v", first)
	}
	last, _ := QuestionAt(18)
	if last.FieldKey != ContactField || last.Observation == "" {
		t.Fatalf("unexpected last question %+v", last)
	}
}

func TestOnlyOtherDetailsIsOptional(t *testing.T) {
	var optional []string
	for _, q := range Questions() {
		if !q.Required {
			optional = append(optional, q.FieldKey)
		}
	}
	if diff := cmp.Diff([]string{"outrosDetalhes"}, optional); diff != "" {
		t.Fatalf("optional questions mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldTableCoversCatalog(t *testing.T) {
	qs := Questions()
	fs := Fields()
	if len(qs) != len(fs) {
		t.Fatalf("catalog has %d questions, table has %d fields", len(qs), len(fs))
	}
	for i, q := range qs {
		if fs[i].WizardKey != q.FieldKey {
			t.Errorf("row %d: table key %q, question key %q", i, fs[i].WizardKey, q.FieldKey)
		}
	}
}

func TestSchemaMapping(t *testing.T) {
	cases := map[string]string{
		"nomes":                 "nomes",
		"primeiroEncontro":      "primeiro_encontro",
		"momentosInesqueciveis": "momentos_inesqueciveis",
		"outrosDetalhes":        "outros_detalhes",
		"telefone":              "telefone",
	}
	answers := make(map[string]string, len(cases))
	for wizard := range cases {
		answers[wizard] = "valor " + wizard
	}
	out := ToSchema(answers)
	for wizard, schema := range cases {
		if out[schema] != "valor "+wizard {
			t.Errorf("column %q = %q, want the answer of %q", schema, out[schema], wizard)
		}
	}
	if _, ok := out["status"]; ok {
		t.Error("status must not be a wizard field")
	}
}

func TestToSchemaFillsMissingAndDropsUnknown(t *testing.T) {
	out := ToSchema(map[string]string{"primeiraFoto": "praia", "bogus": "x"})
	if len(out) != len(Fields()) {
		t.Fatalf("expected %d columns, got %d", len(Fields()), len(out))
	}
	if out["primeira_foto"] != "praia" {
		t.Fatalf("primeira_foto = %q", out["primeira_foto"])
	}
	if v, ok := out["nomes"]; !ok || v != "" {
		t.Fatalf("nomes should be present and empty, got %q, %v", v, ok)
	}
	if _, ok := out["bogus"]; ok {
		t.Fatal("unknown key leaked into schema")
	}
}
