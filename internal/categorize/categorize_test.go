package categorize

import (
	"testing"

	"grana/internal/core"
)

func TestCategorize(t *testing.T) {
	c := NewKeywordClassifier()
	cases := []struct {
		in   string
		want core.Category
	}{
		{"Compras no supermercado", core.CategoryAlimentacao},
		{"iFood jantar", core.CategoryAlimentacao},
		{"Uber para o trabalho", core.CategoryTransporte},
		{"Gasolina posto shell", core.CategoryTransporte},
		{"Aluguel de junho", core.CategoryMoradia},
		{"Conta de luz", core.CategoryMoradia},
		{"Farmácia remédio gripe", core.CategorySaude},
		{"farmacia sem acento", core.CategorySaude},
		{"Mensalidade faculdade", core.CategoryEducacao},
		{"Netflix", core.CategoryEntretenimento},
		{"Tênis novo", core.CategoryVestuario},
		{"Carregador do celular", core.CategoryTecnologia},
		{"Assinatura internet fibra", core.CategoryServicos},
		{"presente aniversário", core.CategoryOutros},
		{"", core.CategoryOutros},
		{"   ", core.CategoryOutros},
	}
	for _, tc := range cases {
		if got := c.Categorize(tc.in); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCategorizeAlwaysKnown(t *testing.T) {
	c := NewKeywordClassifier()
	descs := []string{"mercado", "uber", "qualquer coisa", "x"}
	for _, d := range descs {
		if got := c.Categorize(d); !got.Known() {
			t.Fatalf("Categorize(%q) = %q, not in the known set", d, got)
		}
	}
}
