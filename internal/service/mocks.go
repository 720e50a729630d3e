package service

//go:generate mockgen -destination=gomock/mock_services.go -package=servicegomock . ProductService,SaleService
