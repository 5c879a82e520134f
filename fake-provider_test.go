package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
)

// fakeProvider records every provisioning call in order. Regions is kept
// apart from calls because it never touches any resource.
type fakeProvider struct {
	regions     []string
	regionCalls int

	calls []string

	// failAt is the 1-based call that returns failStatus instead of 200.
	failAt     int
	failStatus int
	// errAt is the 1-based call that returns err.
	errAt int
	err   error

	ownerID     string
	queryStates []string

	buckets    []BucketSpec
	queries    []string
	workGroups []WorkGroupSpec
	uploads    map[string]string
}

func (f *fakeProvider) record(call string) (Result, error) {
	f.calls = append(f.calls, call)
	n := len(f.calls)
	if n == f.errAt {
		return Result{}, f.err
	}
	if n == f.failAt {
		return Result{StatusCode: f.failStatus}, nil
	}
	return Result{StatusCode: 200}, nil
}

func (f *fakeProvider) Regions(ctx context.Context) ([]string, error) {
	f.regionCalls++
	return f.regions, nil
}

func (f *fakeProvider) CreateBucket(ctx context.Context, spec BucketSpec) (Result, error) {
	f.buckets = append(f.buckets, spec)
	return f.record("CreateBucket " + spec.Name)
}

func (f *fakeProvider) CanonicalOwnerID(ctx context.Context) (string, Result, error) {
	res, err := f.record("ListBuckets")
	return f.ownerID, res, err
}

func (f *fakeProvider) BlockPublicAccess(ctx context.Context, bucket string) (Result, error) {
	return f.record("PutPublicAccessBlock " + bucket)
}

func (f *fakeProvider) EnableAccessLogging(ctx context.Context, bucket, targetBucket, targetPrefix string) (Result, error) {
	return f.record(fmt.Sprintf("PutBucketLogging %s -> %s/%s", bucket, targetBucket, targetPrefix))
}

func (f *fakeProvider) StartQuery(ctx context.Context, query, outputLocation string) (string, Result, error) {
	f.queries = append(f.queries, query)
	head := strings.SplitN(query, "(", 2)[0]
	res, err := f.record(fmt.Sprintf("StartQuery %s @ %s", head, outputLocation))
	return fmt.Sprintf("q-%d", len(f.queries)), res, err
}

func (f *fakeProvider) QueryState(ctx context.Context, executionID string) (QueryStatus, error) {
	_, err := f.record("QueryState " + executionID)
	if err != nil {
		return QueryStatus{}, err
	}
	if len(f.queryStates) == 0 {
		return QueryStatus{State: QuerySucceeded}, nil
	}
	state := f.queryStates[0]
	f.queryStates = f.queryStates[1:]
	return QueryStatus{State: state, Reason: "fake " + state}, nil
}

func (f *fakeProvider) CreateWorkGroup(ctx context.Context, spec WorkGroupSpec) (Result, error) {
	f.workGroups = append(f.workGroups, spec)
	return f.record("CreateWorkGroup " + spec.Name)
}

func (f *fakeProvider) UploadObject(ctx context.Context, bucket, key string, body io.Reader) error {
	_, err := f.record("Upload " + bucket + "/" + key)
	if err != nil {
		return err
	}
	b, readErr := ioutil.ReadAll(body)
	if readErr != nil {
		return readErr
	}
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	f.uploads[bucket+"/"+key] = string(b)
	return nil
}

func testConfig() config {
	empty := ""
	lookup := "us-east-1"
	wait := false
	interval := 1
	manifest := false
	verbose := false
	return config{
		region:         &empty,
		bucket:         &empty,
		lookupRegion:   &lookup,
		profile:        &empty,
		waitQueries:    &wait,
		pollInterval:   &interval,
		uploadManifest: &manifest,
		logVerbose:     &verbose,
	}
}
