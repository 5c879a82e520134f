package main

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/aws/aws-sdk-go/service/athena/athenaiface"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3 rejects an explicit location constraint for its default region.
const defaultS3Region = "us-east-1"

// awsProvider talks to AWS in exactly one region.
type awsProvider struct {
	region   string
	s3       s3iface.S3API
	ec2      ec2iface.EC2API
	athena   athenaiface.AthenaAPI
	uploader s3manageriface.UploaderAPI
}

var _ Provider = (*awsProvider)(nil)

func newSession(region string, profile string) (*session.Session, error) {
	return session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(region)},
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	})
}

func newAWSProvider(sess *session.Session) *awsProvider {
	return &awsProvider{
		region: aws.StringValue(sess.Config.Region),
		s3:     s3.New(sess),
		ec2:    ec2.New(sess),
		athena: athena.New(sess),
		uploader: s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
			u.PartSize = 5 * 1024 * 1024 // Must be at least 5MB
		}),
	}
}

// captureStatus records the HTTP status of the last response sent for r.
func captureStatus(res *Result) request.Option {
	return func(r *request.Request) {
		r.Handlers.Send.PushBack(func(r *request.Request) {
			if r.HTTPResponse != nil {
				res.StatusCode = r.HTTPResponse.StatusCode
			}
		})
	}
}

func (p *awsProvider) Regions(ctx context.Context) ([]string, error) {

	Debug.Printf("Describing regions via %s", p.region)

	out, err := p.ec2.DescribeRegionsWithContext(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, classifyAWSError("DescribeRegions", err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		regions = append(regions, aws.StringValue(r.RegionName))
	}
	return regions, nil
}

func (p *awsProvider) CreateBucket(ctx context.Context, spec BucketSpec) (Result, error) {

	input := &s3.CreateBucketInput{
		Bucket: aws.String(spec.Name),
	}
	if p.region != defaultS3Region {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(p.region),
		}
	}
	if spec.hasGrants() {
		if spec.GrantReadACP != "" {
			input.GrantReadACP = aws.String(spec.GrantReadACP)
		}
		if spec.GrantWrite != "" {
			input.GrantWrite = aws.String(spec.GrantWrite)
		}
		if spec.GrantFullControl != "" {
			input.GrantFullControl = aws.String(spec.GrantFullControl)
		}
	} else {
		input.ACL = aws.String(s3.BucketCannedACLPrivate)
	}

	Debug.Printf("Creating bucket %s (%s)", spec.Name, p.region)

	var res Result
	_, err := p.s3.CreateBucketWithContext(ctx, input, captureStatus(&res))
	if err != nil {
		return res, classifyAWSError("CreateBucket", err)
	}
	return res, nil
}

func (p *awsProvider) CanonicalOwnerID(ctx context.Context) (string, Result, error) {
	var res Result
	out, err := p.s3.ListBucketsWithContext(ctx, &s3.ListBucketsInput{}, captureStatus(&res))
	if err != nil {
		return "", res, classifyAWSError("ListBuckets", err)
	}
	if out.Owner == nil {
		return "", res, nil
	}
	return aws.StringValue(out.Owner.ID), res, nil
}

func (p *awsProvider) BlockPublicAccess(ctx context.Context, bucket string) (Result, error) {
	var res Result
	_, err := p.s3.PutPublicAccessBlockWithContext(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	}, captureStatus(&res))
	if err != nil {
		return res, classifyAWSError("PutPublicAccessBlock", err)
	}
	return res, nil
}

func (p *awsProvider) EnableAccessLogging(ctx context.Context, bucket, targetBucket, targetPrefix string) (Result, error) {
	var res Result
	_, err := p.s3.PutBucketLoggingWithContext(ctx, &s3.PutBucketLoggingInput{
		Bucket: aws.String(bucket),
		BucketLoggingStatus: &s3.BucketLoggingStatus{
			LoggingEnabled: &s3.LoggingEnabled{
				TargetBucket: aws.String(targetBucket),
				TargetPrefix: aws.String(targetPrefix),
			},
		},
	}, captureStatus(&res))
	if err != nil {
		return res, classifyAWSError("PutBucketLogging", err)
	}
	return res, nil
}

func (p *awsProvider) StartQuery(ctx context.Context, query, outputLocation string) (string, Result, error) {

	Debug.Printf("Athena query=%q output=%s", query, outputLocation)

	var res Result
	out, err := p.athena.StartQueryExecutionWithContext(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(query),
		ResultConfiguration: &athena.ResultConfiguration{
			OutputLocation: aws.String(outputLocation),
		},
	}, captureStatus(&res))
	if err != nil {
		return "", res, classifyAWSError("StartQueryExecution", err)
	}
	return aws.StringValue(out.QueryExecutionId), res, nil
}

func (p *awsProvider) QueryState(ctx context.Context, executionID string) (QueryStatus, error) {
	out, err := p.athena.GetQueryExecutionWithContext(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(executionID),
	})
	if err != nil {
		return QueryStatus{}, classifyAWSError("GetQueryExecution", err)
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return QueryStatus{}, nil
	}
	return QueryStatus{
		State:  aws.StringValue(out.QueryExecution.Status.State),
		Reason: aws.StringValue(out.QueryExecution.Status.StateChangeReason),
	}, nil
}

func (p *awsProvider) CreateWorkGroup(ctx context.Context, spec WorkGroupSpec) (Result, error) {
	var res Result
	_, err := p.athena.CreateWorkGroupWithContext(ctx, &athena.CreateWorkGroupInput{
		Name:        aws.String(spec.Name),
		Description: aws.String(spec.Description),
		Configuration: &athena.WorkGroupConfiguration{
			ResultConfiguration: &athena.ResultConfiguration{
				OutputLocation: aws.String(spec.OutputLocation),
			},
			EnforceWorkGroupConfiguration: aws.Bool(spec.Enforce),
		},
	}, captureStatus(&res))
	if err != nil {
		return res, classifyAWSError("CreateWorkGroup", err)
	}
	return res, nil
}

func (p *awsProvider) UploadObject(ctx context.Context, bucket, key string, body io.Reader) error {
	return S3Upload(ctx, p.uploader, bucket, key, p.region, body)
}
