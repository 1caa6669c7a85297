package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/repairhubng/repairhub/config"
	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
)

const (
	MaxImageFileSize = 10 * 1024 * 1024

	avatarSize     = 400
	thumbnailWidth = 200
)

// MediaService interface
type MediaService interface {
	UploadRepairPhotos(ctx context.Context, files []*multipart.FileHeader, userID, repairRequestID uint) ([]models.Media, *apiError.Error)
	UploadAvatar(ctx context.Context, file *multipart.FileHeader, userID uint) (string, string, *apiError.Error)
}

type mediaService struct {
	Config    *config.Config
	mediaRepo db.MediaRepository
}

// NewMediaService instantiates a mediaService
func NewMediaService(mediaRepo db.MediaRepository, conf *config.Config) MediaService {
	return &mediaService{
		Config:    conf,
		mediaRepo: mediaRepo,
	}
}

func generateUniqueFilename(extension string) string {
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.New(), extension)
}

// UploadRepairPhotos stores each photo and a thumbnail in S3 and records a
// media row per file.
func (m *mediaService) UploadRepairPhotos(ctx context.Context, files []*multipart.FileHeader, userID, repairRequestID uint) ([]models.Media, *apiError.Error) {
	saved := make([]models.Media, 0, len(files))
	for _, fileHeader := range files {
		if fileHeader.Size > MaxImageFileSize {
			return nil, apiError.New("image file size exceeds limit", http.StatusBadRequest)
		}

		img, err := decodeImage(fileHeader)
		if err != nil {
			return nil, apiError.New(fmt.Sprintf("unsupported image: %v", err), http.StatusBadRequest)
		}

		fileURL, err := m.uploadImage(ctx, img, "repairs")
		if err != nil {
			log.Printf("upload repair photo: %v", err)
			return nil, apiError.ErrInternalServerError
		}

		thumbnail := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
		thumbnailURL, err := m.uploadImage(ctx, thumbnail, "thumbnails")
		if err != nil {
			log.Printf("upload repair thumbnail: %v", err)
			return nil, apiError.ErrInternalServerError
		}

		media := &models.Media{
			UserID:          userID,
			RepairRequestID: repairRequestID,
			FileURL:         fileURL,
			ThumbnailURL:    thumbnailURL,
			FileType:        "image",
			FileSize:        fileHeader.Size,
		}
		created, err := m.mediaRepo.CreateMedia(media)
		if err != nil {
			log.Printf("save media record: %v", err)
			return nil, apiError.ErrInternalServerError
		}
		saved = append(saved, *created)
	}
	return saved, nil
}

// UploadAvatar stores a square-cropped avatar and its thumbnail, returning
// both URLs.
func (m *mediaService) UploadAvatar(ctx context.Context, file *multipart.FileHeader, userID uint) (string, string, *apiError.Error) {
	if file.Size > MaxImageFileSize {
		return "", "", apiError.New("image file size exceeds limit", http.StatusBadRequest)
	}

	img, err := decodeImage(file)
	if err != nil {
		return "", "", apiError.New(fmt.Sprintf("unsupported image: %v", err), http.StatusBadRequest)
	}

	avatar := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)
	avatarURL, err := m.uploadImage(ctx, avatar, "avatars")
	if err != nil {
		log.Printf("upload avatar for user %d: %v", userID, err)
		return "", "", apiError.ErrInternalServerError
	}

	thumbnail := resize.Resize(thumbnailWidth, 0, avatar, resize.Lanczos3)
	thumbnailURL, err := m.uploadImage(ctx, thumbnail, "thumbnails")
	if err != nil {
		log.Printf("upload avatar thumbnail for user %d: %v", userID, err)
		return "", "", apiError.ErrInternalServerError
	}

	return avatarURL, thumbnailURL, nil
}

func decodeImage(fileHeader *multipart.FileHeader) (image.Image, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %v", err)
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image: %v", err)
	}
	return img, nil
}

func (m *mediaService) uploadImage(ctx context.Context, img image.Image, folderName string) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return "", fmt.Errorf("encode jpeg: %v", err)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(m.Config.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(m.Config.AwsAccessKeyID, m.Config.AwsSecretAccessKey, ""),
		),
	)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %v", err)
	}
	svc := s3.NewFromConfig(cfg)

	fileKey := fmt.Sprintf("%s/%s", folderName, generateUniqueFilename(".jpg"))
	_, err = svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Config.AwsBucketName),
		Key:         aws.String(fileKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ACL:         "public-read",
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Config.AwsBucketName, m.Config.AwsRegion, fileKey), nil
}
