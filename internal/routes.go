package internal

import (
	"net/http"
	"portal/internal/controllers"
	"portal/internal/providers"
)

func InitRoutes(archiveController *controllers.ArchiveController, treeController *controllers.TreeController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/archives", http.HandlerFunc(archiveController.ListAll))
	routers.Get("/archives/{entity}", http.HandlerFunc(archiveController.ListEntity))
	routers.Post("/archives/{entity}/{id}", http.HandlerFunc(archiveController.Archive))
	routers.Post("/archives/{entity}/{id}/restore", http.HandlerFunc(archiveController.Restore))
	routers.Delete("/archives/{entity}/{id}", http.HandlerFunc(archiveController.Delete))
	routers.Get("/tree", http.HandlerFunc(treeController.Get))
	routers.Post("/tree", http.HandlerFunc(treeController.Set))
	return routers
}
