package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"laboissim_backend/internals/configs"
	contentModel "laboissim_backend/internals/features/content/model"
	fileModel "laboissim_backend/internals/features/files/model"
	deletionModel "laboissim_backend/internals/features/projects/deletion_request/model"
	documentModel "laboissim_backend/internals/features/projects/document/model"
	projectModel "laboissim_backend/internals/features/projects/project/model"
	publicationModel "laboissim_backend/internals/features/publications/model"
	authModel "laboissim_backend/internals/features/users/auth/model"
	userModel "laboissim_backend/internals/features/users/user/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Connecting to PostgreSQL...")

	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=laboissim&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // works with PgBouncer transaction pooling
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

// Migrate creates/updates the schema and the constraints the services
// rely on: the status check on deletion requests and the partial unique
// index that blocks two pending requests for the same project.
func Migrate() {
	if err := DB.AutoMigrate(
		&userModel.UserModel{},
		&userModel.UserProfileModel{},
		&authModel.TokenBlacklistModel{},
		&authModel.RefreshTokenModel{},
		&projectModel.ProjectModel{},
		&projectModel.ProjectMemberModel{},
		&documentModel.ProjectDocumentModel{},
		&deletionModel.ProjectDeletionRequestModel{},
		&publicationModel.PublicationModel{},
		&fileModel.UserFileModel{},
		&contentModel.SiteContentModel{},
	); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	if err := DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_deletion_request_pending
		 ON project_deletion_requests (project_id) WHERE status = 'pending'`,
	).Error; err != nil {
		log.Printf("⚠️ pending-request index: %v", err)
	}

	log.Println("✅ Migration done.")
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
