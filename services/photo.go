package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/carefront/config"
)

// PhotoSize is the edge length of stored doctor photos.
const PhotoSize = 400

// PhotoStore persists a processed photo and returns its public URL.
type PhotoStore interface {
	Upload(ctx context.Context, jpeg []byte) (string, error)
}

// ProcessPhoto decodes an uploaded image and crops it to a square JPEG.
func ProcessPhoto(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "decoding photo")
	}
	thumb := imaging.Fill(img, PhotoSize, PhotoSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encoding photo")
	}
	return buf.Bytes(), nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3PhotoStore struct {
	client objectPutter
	bucket string
	region string
	folder string
}

func NewS3PhotoStore(ctx context.Context, c *config.Config) (*S3PhotoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.AWSRegion)}
	if c.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AWSAccessKeyID,
			c.AWSSecretAccessKey,
			"",
		)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load SDK config")
	}
	return newS3PhotoStore(s3.NewFromConfig(cfg), c.AWSBucket, c.AWSRegion), nil
}

func newS3PhotoStore(client objectPutter, bucket, region string) *S3PhotoStore {
	return &S3PhotoStore{client: client, bucket: bucket, region: region, folder: "doctors"}
}

func (s *S3PhotoStore) Upload(ctx context.Context, jpeg []byte) (string, error) {
	key := fmt.Sprintf("%s/%s.jpg", s.folder, uuid.NewString())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jpeg),
		ContentType: aws.String("image/jpeg"),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", errors.Wrap(err, "uploading photo to s3")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
