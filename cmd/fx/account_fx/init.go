package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"kindred/internal/api/controllers"
	"kindred/internal/repositories"
	"kindred/internal/services"
)

var Module = fx.Provide(
	provideUserRepo, provideAccountService, provideAccountController)

func provideUserRepo(db *gorm.DB) repositories.UserRepositoryInterface {
	return repositories.NewUserRepository(db)
}

func provideAccountService(userRepo repositories.UserRepositoryInterface) services.AccountServiceInterface {
	return services.NewAccountService(userRepo)
}

func provideAccountController(accountService services.AccountServiceInterface) *controllers.AccountController {
	return controllers.NewAccountController(accountService)
}
