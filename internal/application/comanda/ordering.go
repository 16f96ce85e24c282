package comanda

import (
	"sort"

	"github.com/comanda/backend/internal/domain/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// productSorter orders the catalog by name the way a Brazilian reader expects:
// accents do not push "Água" after "Zimbro" and case is ignored.
type productSorter struct {
	collator *collate.Collator
}

func newProductSorter() *productSorter {
	return &productSorter{
		collator: collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.Loose),
	}
}

func (ps *productSorter) sort(products []*catalog.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return ps.collator.CompareString(products[i].Name, products[j].Name) < 0
	})
}
