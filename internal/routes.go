package internal

import (
	"epd/internal/controllers"
	"epd/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController, bannerController *controllers.BannerController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/profile", http.HandlerFunc(apiController.StoreProfile))
	routers.Get("/profile", http.HandlerFunc(apiController.GetProfile))
	routers.Get("/profiles", http.HandlerFunc(apiController.ListProfiles))
	routers.Post("/profile/contacts", http.HandlerFunc(apiController.UpdateContacts))
	routers.Post("/profile/medical", http.HandlerFunc(apiController.UpdateMedicalInfo))
	routers.Post("/profile/contact-usage", http.HandlerFunc(apiController.RecordContactUsage))
	routers.Get("/usage-stats", http.HandlerFunc(apiController.GetUsageStats))
	routers.Get("/qr", http.HandlerFunc(apiController.GetQRPayload))
	routers.Delete("/clear", http.HandlerFunc(apiController.ClearAll))
	routers.Post("/banner", http.HandlerFunc(bannerController.Classify))
	return routers
}
