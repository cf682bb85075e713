// Package categorize assigns a spending category to free-form expense
// descriptions. Matching is keyword based and deterministic; anything
// unmatched falls back to Outros.
package categorize

import (
	"strings"

	"grana/internal/core"
)

// rule maps lowercase keywords to one category. Rules are evaluated in
// order and the first hit wins, so the more specific lists come first.
type rule struct {
	category core.Category
	keywords []string
}

// Keyword lists carry both accented and plain spellings because users
// type either.
var rules = []rule{
	{core.CategoryAlimentacao, []string{
		"mercado", "supermercado", "restaurante", "lanche", "ifood",
		"padaria", "almoço", "almoco", "jantar", "café", "cafe",
		"pizza", "açougue", "acougue", "feira", "hortifruti", "comida",
	}},
	{core.CategoryTransporte, []string{
		"uber", "99", "gasolina", "combustível", "combustivel",
		"ônibus", "onibus", "metrô", "metro", "estacionamento",
		"pedágio", "pedagio", "passagem", "táxi", "taxi",
	}},
	{core.CategoryMoradia, []string{
		"aluguel", "condomínio", "condominio", "iptu", "energia",
		"luz", "água", "agua", "gás", "gas", "reforma", "sofá",
		"sofa", "móveis", "moveis",
	}},
	{core.CategorySaude, []string{
		"farmácia", "farmacia", "remédio", "remedio", "médico",
		"medico", "consulta", "dentista", "exame", "saúde", "saude",
		"academia", "hospital", "psicólogo", "psicologo",
	}},
	{core.CategoryEducacao, []string{
		"curso", "faculdade", "escola", "livro", "mensalidade",
		"apostila", "aula",
	}},
	{core.CategoryEntretenimento, []string{
		"cinema", "show", "streaming", "netflix", "spotify", "jogo",
		"bar", "festa", "viagem", "ingresso", "teatro",
	}},
	{core.CategoryVestuario, []string{
		"roupa", "camisa", "calça", "calca", "tênis", "tenis",
		"sapato", "vestido", "casaco", "meia",
	}},
	{core.CategoryTecnologia, []string{
		"notebook", "celular", "computador", "fone", "carregador",
		"mouse", "teclado", "monitor", "tablet", "eletrônico",
		"eletronico",
	}},
	{core.CategoryServicos, []string{
		"internet", "telefone", "assinatura", "barbeiro",
		"cabeleireiro", "lavanderia", "manutenção", "manutencao",
		"conserto", "seguro", "tarifa", "cartório", "cartorio",
	}},
}

// KeywordClassifier is the default categorization collaborator wired
// into expense creation when the caller omits a category.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Categorize returns the first category whose keyword list matches the
// description, or Outros when nothing matches.
func (c *KeywordClassifier) Categorize(description string) core.Category {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return core.CategoryOutros
	}
	for _, r := range rules {
		if containsAny(desc, r.keywords) {
			return r.category
		}
	}
	return core.CategoryOutros
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
