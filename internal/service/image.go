package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/config"
	"github.com/pageza/recipekeeper/backend/internal/metrics"
	"github.com/pageza/recipekeeper/backend/internal/model"
)

// MaxImageSize caps recipe image uploads.
const MaxImageSize = 10 << 20

// ObjectStore stores an object and returns its public URL.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// S3Store writes objects to the configured bucket.
type S3Store struct {
	cfg *config.S3Config
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.BucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.cfg.ObjectURL(key), nil
}

// ImageService uploads recipe photos and attaches them to recipes.
type ImageService struct {
	store   ObjectStore
	recipes *RecipeService
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewImageService creates a new ImageService instance. A nil store makes
// every upload fail with ErrStorageNotConfigured.
func NewImageService(store ObjectStore, recipes *RecipeService, m *metrics.Metrics, log *zap.Logger) *ImageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{store: store, recipes: recipes, metrics: m, log: log.With(zap.String("component", "images"))}
}

// UploadRecipeImage stores an image for one of the user's recipes and
// appends its URL to the recipe's images.
func (s *ImageService) UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, r io.Reader) (*model.Recipe, error) {
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}
	if _, err := s.recipes.GetRecipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, model.InvalidInput("image", "is empty")
	}
	if len(data) > MaxImageSize {
		return nil, model.InvalidInput("image", fmt.Sprintf("must be at most %d bytes", MaxImageSize))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, model.InvalidInput("image", fmt.Sprintf("unsupported content type %s", mt.String()))
	}

	key := fmt.Sprintf("recipes/%s/%s/%s%s", userID, recipeID, uuid.New(), mt.Extension())
	url, err := s.store.PutObject(ctx, key, mt.String(), data)
	if err != nil {
		return nil, err
	}
	s.metrics.ImageUploaded()
	s.log.Info("recipe image stored", zap.String("recipe_id", recipeID.String()), zap.String("key", key))

	return s.recipes.AddImage(ctx, userID, recipeID, url)
}
