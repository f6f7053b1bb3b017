package thoughts_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"kindred/internal/api/controllers"
	"kindred/internal/repositories"
	"kindred/internal/services"
	"kindred/pkg/utils"
)

var Module = fx.Provide(
	provideThoughtRepo, provideVectorIndexRepo, provideThoughtService, provideThoughtController)

func provideThoughtRepo(db *gorm.DB) repositories.ThoughtRepositoryInterface {
	return repositories.NewThoughtRepository(db)
}

func provideVectorIndexRepo(db *gorm.DB) repositories.VectorIndexRepositoryInterface {
	return repositories.NewVectorIndexRepository(db)
}

func provideThoughtService(
	thoughtRepo repositories.ThoughtRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	vectorRepo repositories.VectorIndexRepositoryInterface,
	aiClient utils.AIClientInterface,
) services.ThoughtServiceInterface {
	return services.NewThoughtService(thoughtRepo, tagRepo, vectorRepo, aiClient)
}

func provideThoughtController(thoughtService services.ThoughtServiceInterface) *controllers.ThoughtController {
	return controllers.NewThoughtController(thoughtService)
}
