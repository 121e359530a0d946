package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scams/internal/server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageResolver turns a room into the URL its picture is served from.
type ImageResolver interface {
	RoomImageURL(ctx context.Context, room models.Room) (string, error)
}

// StaticImages serves the URL stored in the catalog.
type StaticImages struct{}

func (StaticImages) RoomImageURL(_ context.Context, room models.Room) (string, error) {
	return room.Image, nil
}

// S3Settings locates the bucket holding room pictures.
type S3Settings struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	Validity     time.Duration
}

// S3Images issues presigned GET URLs for objects named rooms/<id>.jpg.
type S3Images struct {
	settings S3Settings
}

func NewS3Images(s S3Settings) *S3Images {
	if s.Validity <= 0 {
		s.Validity = 15 * time.Minute
	}
	return &S3Images{settings: s}
}

// RoomImageKey is the object key of a room picture.
func RoomImageKey(roomID string) string {
	return fmt.Sprintf("rooms/%s.jpg", roomID)
}

func (s *S3Images) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.settings.AccessKey,
			s.settings.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.settings.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

func (s *S3Images) RoomImageURL(ctx context.Context, room models.Room) (string, error) {
	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.settings.Bucket
	key := RoomImageKey(room.ID)
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.settings.Validity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
