package storage

import (
	"github.com/agamariel/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultCatalog возвращает стартовый каталог, совпадающий с миграцией
// 00002_seed_products.sql. Используется хранилищем в памяти.
func DefaultCatalog() []*models.Product {
	image := "/images/accessories-flat-lay.jpg"
	item := func(id int64, name, description, price, original, category string, stock int, featured bool) *models.Product {
		orig := decimal.RequireFromString(original)
		desc, img, cat := description, image, category
		return &models.Product{
			ID:            id,
			Name:          name,
			Description:   &desc,
			Price:         decimal.RequireFromString(price),
			OriginalPrice: &orig,
			ImageURL:      &img,
			Category:      &cat,
			Stock:         stock,
			Featured:      featured,
		}
	}
	return []*models.Product{
		item(1, "Webcam 4K com Microfone", "Webcam profissional com resolução 4K, microfone integrado com cancelamento de ruído e suporte para tripé.", "249.90", "399.90", "Câmeras", 12, true),
		item(2, "Teclado Mecânico RGB", "Teclado mecânico com switches hot-swappable e iluminação RGB personalizável.", "189.90", "299.90", "Periféricos", 18, true),
		item(3, "Mouse Sem Fio Ergonômico", "Mouse ergonômico sem fio com 6 botões programáveis e sensor de alta precisão.", "79.90", "129.90", "Periféricos", 35, false),
		item(4, "Mini Projetor 4K Portátil", "Projetor compacto com suporte a 4K e bateria integrada.", "899.90", "1299.90", "Projetores", 8, true),
		item(5, "Luminária LED Screenbar", "Barra de luz para monitor sem reflexo na tela.", "159.90", "229.90", "Iluminação", 20, false),
		item(6, "Carregador Portátil 65W USB-C", "Power bank com carregamento rápido para notebooks e smartphones.", "199.90", "279.90", "Energia", 25, false),
	}
}
