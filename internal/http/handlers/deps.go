package handlers

import (
	"github.com/jmoiron/sqlx"

	"craftyard/internal/cache"
	"craftyard/internal/repos"
	"craftyard/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	CatalogHandler *CatalogHandler
	ProductHandler *ProductHandler
}

func NewDeps(db *sqlx.DB, searchCache *cache.SearchCache, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	catRepo := repos.NewCategoryRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, catRepo, searchCache)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: auth},
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
	}
}
