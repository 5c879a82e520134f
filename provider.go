package main

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Provider is the slice of the cloud control plane the provisioner needs.
// Mutating calls report the HTTP status of the response in Result; failures
// the provider itself signals come back as *ProviderError.
type Provider interface {
	Regions(ctx context.Context) ([]string, error)
	CreateBucket(ctx context.Context, spec BucketSpec) (Result, error)
	CanonicalOwnerID(ctx context.Context) (string, Result, error)
	BlockPublicAccess(ctx context.Context, bucket string) (Result, error)
	EnableAccessLogging(ctx context.Context, bucket, targetBucket, targetPrefix string) (Result, error)
	StartQuery(ctx context.Context, query, outputLocation string) (string, Result, error)
	QueryState(ctx context.Context, executionID string) (QueryStatus, error)
	CreateWorkGroup(ctx context.Context, spec WorkGroupSpec) (Result, error)
	UploadObject(ctx context.Context, bucket, key string, body io.Reader) error
}

type Result struct {
	StatusCode int
}

// OK reports whether the call returned 200.
func (r Result) OK() bool {
	return r.StatusCode == 200
}

// BucketSpec describes a bucket to create. With no grants set the bucket is
// created with the private canned ACL.
type BucketSpec struct {
	Name             string
	GrantReadACP     string
	GrantWrite       string
	GrantFullControl string
}

func (b BucketSpec) hasGrants() bool {
	return b.GrantReadACP != "" || b.GrantWrite != "" || b.GrantFullControl != ""
}

type WorkGroupSpec struct {
	Name           string
	OutputLocation string
	Enforce        bool
	Description    string
}

type QueryStatus struct {
	State  string
	Reason string
}

const (
	QuerySucceeded = "SUCCEEDED"
	QueryFailed    = "FAILED"
	QueryCancelled = "CANCELLED"
)

// ErrorKind is the closed set of provider failures the reporter tells apart.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindBucketAlreadyOwnedByYou
	KindBucketAlreadyExists
	KindParamValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindBucketAlreadyOwnedByYou:
		return "BucketAlreadyOwnedByYou"
	case KindBucketAlreadyExists:
		return "BucketAlreadyExists"
	case KindParamValidation:
		return "ParamValidation"
	}
	return "Unexpected"
}

type ProviderError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StatusError is raised when a call completes with a status other than 200.
type StatusError struct {
	Op       string
	Resource string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Status code from %s %s is %d, not 200", e.Op, e.Resource, e.Code)
}

// QueryError is raised when a DDL query finishes in a state other than
// SUCCEEDED.
type QueryError struct {
	Resource string
	Status   QueryStatus
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("Athena query for %s finished %s: %s", e.Resource, e.Status.State, e.Status.Reason)
}

var ErrInvalidRegion = errors.New("region key is invalid")

func checkStatus(op, resource string, res Result) error {
	if !res.OK() {
		return &StatusError{Op: op, Resource: resource, Code: res.StatusCode}
	}
	return nil
}
