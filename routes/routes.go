package routes

// Routes package cung cấp tất cả routing functions cho Siniestros Lookup Service
//
// Cấu trúc:
// - api.go: API routes (/v1/*), health, metrics
// - web.go: Web routes (/, /docs)
// - routes.go: Export functions
//
// Sử dụng:
// routes.SetupAllRoutes(router, searchController, adminController)
