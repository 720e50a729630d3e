package repository

//go:generate mockgen -destination=gomock/mock_repositories.go -package=repositorygomock . ProductRepository,SaleRepository
