package tags_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"kindred/internal/api/controllers"
	"kindred/internal/repositories"
	"kindred/internal/services"
)

var Module = fx.Provide(
	provideTagsRepo, provideTagsService, provideTagsController)

func provideTagsRepo(db *gorm.DB) repositories.TagRepositoryInterface {
	return repositories.NewTagRepository(db)
}

func provideTagsService(tagRepo repositories.TagRepositoryInterface) services.TagServiceInterface {
	return services.NewTagService(tagRepo)
}

func provideTagsController(tagService services.TagServiceInterface) *controllers.TagController {
	return controllers.NewTagController(tagService)
}
