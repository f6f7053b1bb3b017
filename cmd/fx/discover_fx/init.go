package discover_fx

import (
	"go.uber.org/fx"

	"kindred/internal/api/controllers"
	"kindred/internal/repositories"
	"kindred/internal/services"
	"kindred/pkg/utils"
)

var Module = fx.Provide(
	provideRecommendationService, provideExplanationService, provideDiscoverController)

func provideRecommendationService(
	userRepo repositories.UserRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	thoughtRepo repositories.ThoughtRepositoryInterface,
	vectorRepo repositories.VectorIndexRepositoryInterface,
) services.RecommendationServiceInterface {
	return services.NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)
}

func provideExplanationService(
	userRepo repositories.UserRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	thoughtRepo repositories.ThoughtRepositoryInterface,
	aiClient utils.AIClientInterface,
) services.ExplanationServiceInterface {
	return services.NewExplanationService(userRepo, tagRepo, thoughtRepo, aiClient)
}

func provideDiscoverController(
	recommendationService services.RecommendationServiceInterface,
	explanationService services.ExplanationServiceInterface,
) *controllers.DiscoverController {
	return controllers.NewDiscoverController(recommendationService, explanationService)
}
