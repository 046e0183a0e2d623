package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	// JWTSecret may be left empty in production, in which case the secret
	// is fetched from Secret Manager under JWTSecretName.
	JWTSecret      string `envconfig:"JWT_SECRET"`
	JWTSecretName  string `envconfig:"JWT_SECRET_NAME" default:"storefront-jwt-secret"`
	JWTExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`

	// Product payload storage: "db" keeps the blob in the product row,
	// "s3" stores it on an S3-compatible endpoint.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"db"`
	S3URL          string `envconfig:"S3_URL"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`

	// Purchase events are published when a GCP project is configured.
	GCPProjectID        string `envconfig:"GCP_PROJECT_ID"`
	PubSubPurchaseTopic string `envconfig:"PUBSUB_PURCHASE_TOPIC" default:"purchase_created"`

	// First-boot admin account used by cmd/seed.
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
