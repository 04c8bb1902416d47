package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eduhub/tutor-go/internal/config"
	"github.com/eduhub/tutor-go/internal/di"
	"github.com/eduhub/tutor-go/internal/logger"
	"github.com/eduhub/tutor-go/internal/services"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks []func() error
	qaService    *services.QAService
	fileService  *services.FileService
}

// QAService returns the question answering service instance.
func (a *App) QAService() *services.QAService {
	if a == nil {
		return nil
	}
	return a.qaService
}

// FileService returns the file management service instance.
func (a *App) FileService() *services.FileService {
	if a == nil {
		return nil
	}
	return a.fileService
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// SetGlobalApp sets the global app instance
func SetGlobalApp(app *App) {
	globalApp = app
}

// Init bootstraps configuration, logger, storage and AI clients required by
// the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load dynamic configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	app := &App{}
	ctx := context.Background()

	// 依赖注入容器装配全部组件
	container := di.InitContainer()
	if err := di.RegisterProviders(ctx, container); err != nil {
		return nil, err
	}

	err := container.Invoke(func(
		client *mongo.Client,
		qa *services.QAService,
		files *services.FileService,
	) {
		app.qaService = qa
		app.fileService = files
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(closeCtx)
		})
	})
	if err != nil {
		return nil, err
	}

	SetGlobalApp(app)
	return app, nil
}

// Shutdown flushes/logs and closes resources gracefully.
func (a *App) Shutdown() {
	// Execute cleanup tasks in reverse order (best effort).
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			log.Printf("Cleanup error: %v\n", err)
		}
	}

	// Flush logger buffers.
	logger.Sync()
}
