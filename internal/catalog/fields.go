package catalog

// Field pairs a wizard key with its persisted column. The column names are
// read by the back-office and the automation workflows and must not change.
type Field struct {
	WizardKey string
	SchemaKey string
}

var fields = []Field{
	{"nomes", "nomes"},
	{"conheceram", "conheceram"},
	{"primeiroEncontro", "primeiro_encontro"},
	{"primeiraFoto", "primeira_foto"},
	{"primeiraViagem", "primeira_viagem"},
	{"presenteEspecial", "presente_especial"},
	{"musicaComeco", "musica_comeco"},
	{"hobbyAtividade", "hobby_atividade"},
	{"lugarEspecial", "lugar_especial"},
	{"momentosInesqueciveis", "momentos_inesqueciveis"},
	{"viagemInesquecivel", "viagem_inesquecivel"},
	{"pets", "pets"},
	{"comidaFavorita", "comida_favorita"},
	{"restauranteEspecial", "restaurante_especial"},
	{"comidaJuntos", "comida_juntos"},
	{"detalheFofo", "detalhe_fofo"},
	{"outrosDetalhes", "outros_detalhes"},
	{ContactField, "telefone"},
}

// Fields returns the mapping table in catalog order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// ToSchema renames wizard answers to persisted columns. Every mapped column
// is present in the result; missing answers become empty strings and keys
// outside the table are dropped.
func ToSchema(answers map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.SchemaKey] = answers[f.WizardKey]
	}
	return out
}
