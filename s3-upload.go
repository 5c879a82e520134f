package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

func S3Upload(ctx context.Context, uploader s3manageriface.UploaderAPI, bucket string, item string, region string, body io.Reader) error {

	Info.Printf("Uploading: s3://%s/%s (%s)", bucket, item, region)

	// Upload input parameters
	upParams := &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(item),
		Body:        body,
		ContentType: aws.String("text/tab-separated-values"),
	}

	// Perform an upload.
	result, err := uploader.UploadWithContext(ctx, upParams)
	if err != nil {
		return classifyAWSError("Upload", fmt.Errorf("Unable to upload item to s3://%s/%s: %w", bucket, item, err))
	}
	Debug.Printf("Upload Result=%v", result)

	return nil
}
