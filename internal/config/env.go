package config

import (
	"github.com/JaimeStill/kahuna/pkg/database"
	"github.com/JaimeStill/kahuna/pkg/logging"
	"github.com/JaimeStill/kahuna/pkg/middleware"
	"github.com/JaimeStill/kahuna/pkg/pagination"
	"github.com/JaimeStill/kahuna/pkg/storage"
)

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CORS_ENABLED",
	Origins:          "CORS_ORIGINS",
	AllowedMethods:   "CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CORS_ALLOWED_HEADERS",
	AllowCredentials: "CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PAGINATION_MAX_PAGE_SIZE",
}

var databaseEnv = &database.Env{
	Driver:          "DATABASE_DRIVER",
	Path:            "DATABASE_PATH",
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:     "STORAGE_BACKEND",
	BasePath:    "STORAGE_BASE_PATH",
	S3Endpoint:  "STORAGE_S3_ENDPOINT",
	S3Region:    "STORAGE_S3_REGION",
	S3Bucket:    "STORAGE_S3_BUCKET",
	S3AccessKey: "STORAGE_S3_ACCESS_KEY",
	S3SecretKey: "STORAGE_S3_SECRET_KEY",
	S3PathStyle: "STORAGE_S3_PATH_STYLE",
}
