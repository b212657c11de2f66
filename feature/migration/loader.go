package migration

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	repo    *Repository
	handler *Handler
}

// NewFeature creates the migration log feature. repo may be nil when no datastore is
// configured; the feature is then disabled.
func NewFeature(repo *Repository, logger *zap.Logger) *Feature {
	f := &Feature{repo: repo}
	if repo != nil {
		f.handler = NewHandler(repo, logger)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "migration"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.repo != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
