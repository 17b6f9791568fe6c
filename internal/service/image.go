package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/foodgram/backend/config"
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeBase64Image decodes an image payload submitted either as a
// data-URI-prefixed base64 string or as raw base64, and infers the image
// format from the decoded bytes. It has no hidden state.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	if payload == "" {
		return nil, "", ErrInvalidImage
	}

	raw := payload
	if strings.HasPrefix(payload, "data:") {
		_, rest, found := strings.Cut(payload, ";base64,")
		if !found {
			return nil, "", ErrInvalidImage
		}
		raw = rest
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", ErrInvalidImage
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, "", ErrInvalidImage
	}

	return data, ext, nil
}

// ImageService stores decoded images in S3 and returns public URLs.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadBase64 decodes the payload, stores it under a unique key in the given
// folder and returns the public URL.
func (s *ImageService) UploadBase64(ctx context.Context, payload, folder string) (string, error) {
	data, ext, err := DecodeBase64Image(payload)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s/%s.%s", folder, uuid.New().String(), ext)
	return s.upload(ctx, data, fileName, http.DetectContentType(data))
}

func (s *ImageService) upload(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	logrus.WithField("key", fileName).Debug("uploaded image to S3")
	return publicURL, nil
}
