// Package catalog holds the questionnaire: the ordered questions the wizard
// asks and the table that maps wizard field keys to persisted column names.
package catalog

// Shape is the kind of input a question expects.
type Shape string

const (
	ShapeText      Shape = "text"
	ShapeMultiline Shape = "multiline"
)

// ContactField is the phone/WhatsApp field used to identify an order.
const ContactField = "telefone"

// Question describes one answer step of the wizard.
type Question struct {
	FieldKey    string `json:"fieldKey"`
	Prompt      string `json:"prompt"`
	Subtitle    string `json:"subtitle,omitempty"`
	Observation string `json:"observation,omitempty"`
	Shape       Shape  `json:"shape"`
	Required    bool   `json:"required"`
}

var questions = []Question{
	{FieldKey: "nomes", Prompt: "Qual o nome de vocês?", Shape: ShapeText, Required: true},
	{FieldKey: "conheceram", Prompt: "Quando e como vocês se conheceram?", Subtitle: "(lembrete: informar a data)", Shape: ShapeMultiline, Required: true},
	{FieldKey: "primeiroEncontro", Prompt: "Onde e como foi o primeiro encontro?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "primeiraFoto", Prompt: "Onde foi a primeira foto juntos?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "primeiraViagem", Prompt: "Qual foi e quando foi a primeira viagem ou passeio especial?", Subtitle: "(lembrete: informar data)", Shape: ShapeMultiline, Required: true},
	{FieldKey: "presenteEspecial", Prompt: "Tem algum presente ou gesto especial que marcou o início do relacionamento?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "musicaComeco", Prompt: "Qual música representa esse começo para vocês?", Shape: ShapeText, Required: true},
	{FieldKey: "hobbyAtividade", Prompt: "Tem algum hobby ou atividade que gostam de fazer juntos?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "lugarEspecial", Prompt: "Tem algum lugar especial para vocês?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "momentosInesqueciveis", Prompt: "Quais os momentos mais inesquecíveis até agora?", Subtitle: "(orientar resposta em ordem cronológica, sempre com data ou ano)", Shape: ShapeMultiline, Required: true},
	{FieldKey: "viagemInesquecivel", Prompt: "Qual a viagem MAIS inesquecível? Quando foi?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "pets", Prompt: "Vocês têm pets?", Subtitle: "(nome e espécie, se sim)", Shape: ShapeText, Required: true},
	{FieldKey: "comidaFavorita", Prompt: "Qual a comida ou prato favorito de cada um?", Shape: ShapeMultiline, Required: true},
	{FieldKey: "restauranteEspecial", Prompt: "Existe um restaurante, café ou bar especial?", Shape: ShapeText, Required: true},
	{FieldKey: "comidaJuntos", Prompt: "Vocês têm alguma comida especial que sempre comem juntos?", Subtitle: "(ex: pizza aos sábados, um doce, etc)", Shape: ShapeText, Required: true},
	{FieldKey: "detalheFofo", Prompt: "Tem algum detalhe fofo ou engraçado que não pode faltar na ilustração?", Subtitle: "(bordão, mania, gesto, etc)", Shape: ShapeMultiline, Required: true},
	{FieldKey: "outrosDetalhes", Prompt: "Deseja adicionar mais algum detalhe, história ou informação importante?", Subtitle: "(campo aberto, opcional)", Shape: ShapeMultiline, Required: false},
	{
		FieldKey:    ContactField,
		Prompt:      "Pode compartilhar seu WhatsApp para identificarmos seu pedido?",
		Observation: "Seu número será usado somente para facilitar nossa comunicação sobre detalhes do seu mapa ilustrado.",
		Shape:       ShapeText,
		Required:    true,
	},
}

// Len is the number of answer steps.
func Len() int {
	return len(questions)
}

// QuestionAt returns the question asked at a one-based step. ok is false
// outside [1, Len()].
func QuestionAt(step int) (q Question, ok bool) {
	if step < 1 || step > len(questions) {
		return Question{}, false
	}
	return questions[step-1], true
}

// Questions returns a copy of the ordered catalog.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Lookup finds a question by field key.
func Lookup(fieldKey string) (Question, bool) {
	for _, q := range questions {
		if q.FieldKey == fieldKey {
			return q, true
		}
	}
	return Question{}, false
}
