package main

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
)

// classifyAWSError wraps err in a *ProviderError, naming the failure by its
// AWS error code.
func classifyAWSError(op string, err error) error {

	kind := KindUnexpected

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeBucketAlreadyOwnedByYou:
			kind = KindBucketAlreadyOwnedByYou
		case s3.ErrCodeBucketAlreadyExists:
			kind = KindBucketAlreadyExists
		case request.InvalidParameterErrCode, request.ParamRequiredErrCode, request.ParamMinLenErrCode:
			kind = KindParamValidation
		}
	}

	return &ProviderError{Kind: kind, Op: op, Err: err}
}
